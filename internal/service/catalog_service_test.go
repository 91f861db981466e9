package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalogStore is an in-memory CatalogStore
type fakeCatalogStore struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*models.Product
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{products: make(map[int64]*models.Product)}
}

func (f *fakeCatalogStore) matches(p *models.Product, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Category), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

func (f *fakeCatalogStore) ListProducts(ctx context.Context, query string, page int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.products[id]; ok && f.matches(p, query) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCatalogStore) CountProducts(ctx context.Context, query string) (int, error) {
	products, _ := f.ListProducts(ctx, query, 0)
	return len(products), nil
}

func (f *fakeCatalogStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalogStore) CreateProduct(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeCatalogStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return apperr.NotFound("product", p.ID)
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeCatalogStore) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return apperr.NotFound("product", id)
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalogStore) ToggleProductSold(ctx context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	p.Sold = !p.Sold
	cp := *p
	return &cp, nil
}

func newCatalogService(t *testing.T) (*CatalogService, *fakeCatalogStore, *watch.Feed) {
	t.Helper()
	storeFake := newFakeCatalogStore()
	feed := watch.NewFeed()
	t.Cleanup(feed.Close)
	return NewCatalogService(storeFake, nil, feed), storeFake, feed
}

func runningShoes() *ProductInput {
	return &ProductInput{
		Name:        "Running Shoes",
		Price:       89.99,
		Category:    "sports",
		Description: "Lightweight running shoes for maximum comfort",
	}
}

func TestCreateProduct(t *testing.T) {
	svc, _, feed := newCatalogService(t)

	product, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)

	assert.NotZero(t, product.ID)
	assert.False(t, product.Sold)
	assert.Equal(t, 89.99, product.Price)
	assert.Equal(t, int64(1), feed.Version(watch.ScopeCatalog))
}

func TestCreateProductDefaultsPlaceholderImage(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	product, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)
	assert.Contains(t, product.Image, "via.placeholder.com")
	assert.Contains(t, product.Image, "Running+Shoes")
}

func TestCreateProductValidation(t *testing.T) {
	svc, storeFake, _ := newCatalogService(t)

	tests := []struct {
		name   string
		mutate func(*ProductInput)
		field  string
	}{
		{"empty name", func(p *ProductInput) { p.Name = "  " }, "name"},
		{"zero price", func(p *ProductInput) { p.Price = 0 }, "price"},
		{"negative price", func(p *ProductInput) { p.Price = -5 }, "price"},
		{"unknown category", func(p *ProductInput) { p.Category = "gadgets" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := runningShoes()
			tt.mutate(input)

			_, err := svc.Create(context.Background(), input)
			require.True(t, apperr.IsValidation(err))

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	assert.Empty(t, storeFake.products, "invalid input must not create a product")
}

func TestCreateProductEnumeratesAllInvalidFields(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	_, err := svc.Create(context.Background(), &ProductInput{Name: "", Price: 0, Category: "nope"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"name", "price", "category"}, ve.Fields)
}

func TestToggleSoldIsInvolution(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	product, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)
	original := product.Sold

	once, err := svc.ToggleSold(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, !original, once.Sold)

	twice, err := svc.ToggleSold(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, original, twice.Sold)
}

func TestToggleSoldUnknownProduct(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	_, err := svc.ToggleSold(context.Background(), 404)
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteUnknownProductReportsNotFound(t *testing.T) {
	svc, _, feed := newCatalogService(t)

	err := svc.Delete(context.Background(), 404)
	assert.True(t, apperr.IsNotFound(err))
	assert.Zero(t, feed.Version(watch.ScopeCatalog), "failed delete must not publish")
}

func TestDeleteProduct(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	product, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), product.ID))

	_, err = svc.Get(context.Background(), product.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSearchMatchesNameAndCategory(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	_, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &ProductInput{
		Name:     "Casual Sneakers",
		Price:    59.99,
		Category: "casual",
	})
	require.NoError(t, err)

	result, err := svc.List(context.Background(), "sport", 0)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Running Shoes", result.Products[0].Name)

	// case-insensitive over name too
	result, err = svc.List(context.Background(), "SNEAK", 0)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Casual Sneakers", result.Products[0].Name)
}

func TestUpdateProductKeepsSoldWhenOmitted(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	product, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)
	_, err = svc.ToggleSold(context.Background(), product.ID)
	require.NoError(t, err)

	input := runningShoes()
	input.Price = 99.99

	updated, err := svc.Update(context.Background(), product.ID, input)
	require.NoError(t, err)
	assert.True(t, updated.Sold, "omitted sold flag keeps current value")
	assert.Equal(t, 99.99, updated.Price)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	_, err := svc.Update(context.Background(), 404, runningShoes())
	assert.True(t, apperr.IsNotFound(err))
}

func TestMutationsBumpFeedVersion(t *testing.T) {
	svc, _, feed := newCatalogService(t)

	product, err := svc.Create(context.Background(), runningShoes())
	require.NoError(t, err)
	_, err = svc.ToggleSold(context.Background(), product.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), product.ID))

	assert.Equal(t, int64(3), feed.Version(watch.ScopeCatalog))
}
