package service

import (
	"context"
	"net/url"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/watch"

	"go.uber.org/zap"
)

// CatalogService handles product catalog queries and mutations
type CatalogService struct {
	store  CatalogStore
	cache  CatalogCache
	feed   *watch.Feed
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogStore CatalogStore, cache CatalogCache, feed *watch.Feed) *CatalogService {
	return &CatalogService{
		store:  catalogStore,
		cache:  cache,
		feed:   feed,
		logger: util.GetLogger(),
	}
}

// ProductInput carries the writable product fields
type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Sold        *bool   `json:"sold,omitempty"`
}

// ListResult is a catalog page plus pagination metadata
type ListResult struct {
	Products   []models.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page,omitempty"`
	PageSize   int              `json:"page_size,omitempty"`
	TotalPages int              `json:"total_pages,omitempty"`
}

// List returns products matching query (case-insensitive substring over
// name, category and description). page <= 0 returns everything.
func (s *CatalogService) List(ctx context.Context, query string, page int) (*ListResult, error) {
	query = strings.TrimSpace(query)

	if products, ok := s.cachedList(ctx, query, page); ok {
		util.CatalogCacheHits.Inc()
		return s.buildListResult(ctx, products, query, page)
	}
	util.CatalogCacheMisses.Inc()

	products, err := s.store.ListProducts(ctx, query, page)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCatalogCache(ctx, query, page, products); err != nil {
			s.logger.Warn("Failed to cache catalog page", zap.Error(err))
		}
	}

	return s.buildListResult(ctx, products, query, page)
}

func (s *CatalogService) cachedList(ctx context.Context, query string, page int) ([]models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.GetCatalogCache(ctx, query, page)
}

func (s *CatalogService) buildListResult(ctx context.Context, products []models.Product, query string, page int) (*ListResult, error) {
	result := &ListResult{Products: products, Total: len(products)}

	if page > 0 {
		total, err := s.store.CountProducts(ctx, query)
		if err != nil {
			return nil, err
		}
		result.Total = total
		result.Page = page
		result.PageSize = store.PageSize
		result.TotalPages = (total + store.PageSize - 1) / store.PageSize
	}
	return result, nil
}

// Get retrieves a product by ID
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// Create validates input and inserts a new product. New products are
// never sold.
func (s *CatalogService) Create(ctx context.Context, input *ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Category:    input.Category,
		Description: input.Description,
		Image:       input.Image,
		Sold:        false,
	}
	if product.Image == "" {
		product.Image = placeholderImage(product.Name)
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	util.CatalogMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))

	s.catalogChanged(ctx)
	return product, nil
}

// Update replaces the mutable fields of a product. A nil Sold keeps the
// current flag, matching the admin panel's partial edits.
func (s *CatalogService) Update(ctx context.Context, id int64, input *ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Category = input.Category
	product.Description = input.Description
	if input.Image != "" {
		product.Image = input.Image
	}
	if input.Sold != nil {
		product.Sold = *input.Sold
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	util.CatalogMutationsTotal.WithLabelValues("update").Inc()
	s.catalogChanged(ctx)
	return product, nil
}

// Delete removes a product. Absent ids report NotFound. Historical orders
// keep their line snapshots, so deleting a referenced product is safe.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	util.CatalogMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id))

	s.catalogChanged(ctx)
	return nil
}

// ToggleSold flips a product's availability flag
func (s *CatalogService) ToggleSold(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.store.ToggleProductSold(ctx, id)
	if err != nil {
		return nil, err
	}

	util.CatalogMutationsTotal.WithLabelValues("toggle_sold").Inc()
	s.logger.Info("Product availability toggled",
		zap.Int64("product_id", id),
		zap.Bool("sold", product.Sold))

	s.catalogChanged(ctx)
	return product, nil
}

// catalogChanged invalidates caches and notifies subscribers. Cache and
// version mirror failures are logged, never surfaced: the database row is
// already committed.
func (s *CatalogService) catalogChanged(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.InvalidateCatalog(ctx); err != nil {
			s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
		if _, err := s.cache.BumpVersion(ctx, redisclient.ScopeCatalog); err != nil {
			s.logger.Warn("Failed to bump catalog version", zap.Error(err))
		}
	}
	if s.feed != nil {
		s.feed.Publish(watch.ScopeCatalog)
	}
}

func validateProductInput(input *ProductInput) error {
	var fields []string
	if strings.TrimSpace(input.Name) == "" {
		fields = append(fields, "name")
	}
	if input.Price <= 0 {
		fields = append(fields, "price")
	}
	if !models.KnownCategories[input.Category] {
		fields = append(fields, "category")
	}
	if len(fields) > 0 {
		return apperr.Validation("missing or invalid product fields", fields...)
	}
	return nil
}

func placeholderImage(name string) string {
	return "https://via.placeholder.com/250x250?text=" + url.QueryEscape(name)
}
