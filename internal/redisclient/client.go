package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/go-redis/redis/v8"
)

// Cache scopes used for versioned invalidation
const (
	ScopeCatalog  = "catalog"
	ScopeSettings = "settings"
)

const catalogCacheTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func catalogKey(query string, page int) string {
	return fmt.Sprintf("catalog:list:q=%s:p=%d", query, page)
}

// GetCatalogCache returns a cached product list, or (nil, false) on miss
func (c *Client) GetCatalogCache(ctx context.Context, query string, page int) ([]models.Product, bool) {
	raw, err := c.rdb.Get(ctx, catalogKey(query, page)).Bytes()
	if err != nil {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetCatalogCache stores a product list page with a TTL
func (c *Client) SetCatalogCache(ctx context.Context, query string, page int, products []models.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, catalogKey(query, page), raw, catalogCacheTTL).Err()
}

// InvalidateCatalog drops every cached catalog page
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, "catalog:list:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// GetSettingsCache returns the cached settings record, or (nil, false) on miss
func (c *Client) GetSettingsCache(ctx context.Context) (*models.Settings, bool) {
	raw, err := c.rdb.Get(ctx, "settings:current").Bytes()
	if err != nil {
		return nil, false
	}

	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, false
	}
	return &settings, true
}

// SetSettingsCache stores the settings record
func (c *Client) SetSettingsCache(ctx context.Context, settings *models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "settings:current", raw, 0).Err()
}

// InvalidateSettings drops the cached settings record
func (c *Client) InvalidateSettings(ctx context.Context) error {
	return c.rdb.Del(ctx, "settings:current").Err()
}

// BumpVersion increments and returns the monotonic version for a scope.
// INCR is atomic, so concurrent bumps never observe the same version.
func (c *Client) BumpVersion(ctx context.Context, scope string) (int64, error) {
	return c.rdb.Incr(ctx, "version:"+scope).Result()
}

// GetVersion returns the current version for a scope (0 if never bumped)
func (c *Client) GetVersion(ctx context.Context, scope string) (int64, error) {
	v, err := c.rdb.Get(ctx, "version:"+scope).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}
