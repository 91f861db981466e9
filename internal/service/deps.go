package service

import (
	"context"

	"storefront-service/internal/models"
)

// CatalogStore is the persistence adapter consumed by CatalogService
type CatalogStore interface {
	ListProducts(ctx context.Context, query string, page int) ([]models.Product, error)
	CountProducts(ctx context.Context, query string) (int, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ToggleProductSold(ctx context.Context, id int64) (*models.Product, error)
}

// OrderStore is the persistence adapter consumed by OrderService
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	TransitionOrderStatus(ctx context.Context, id int64, to string) (*models.Order, error)
}

// SettingsStore is the persistence adapter consumed by SettingsService
type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpsertSettings(ctx context.Context, settings *models.Settings) error
}

// EventPublisher publishes order lifecycle events to the bus
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// CatalogCache is the read cache and version mirror for catalog pages
type CatalogCache interface {
	GetCatalogCache(ctx context.Context, query string, page int) ([]models.Product, bool)
	SetCatalogCache(ctx context.Context, query string, page int, products []models.Product) error
	InvalidateCatalog(ctx context.Context) error
	BumpVersion(ctx context.Context, scope string) (int64, error)
}

// SettingsCache is the read cache and version mirror for settings
type SettingsCache interface {
	GetSettingsCache(ctx context.Context) (*models.Settings, bool)
	SetSettingsCache(ctx context.Context, settings *models.Settings) error
	InvalidateSettings(ctx context.Context) error
	BumpVersion(ctx context.Context, scope string) (int64, error)
}
