package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// PageSize is the fixed catalog page size
const PageSize = 10

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// EnsureSchema creates tables and indexes if they do not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return apperr.Storage("ensure schema", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// ListProducts returns catalog entries, optionally filtered by a
// case-insensitive substring match across name, category and description.
// page <= 0 returns all matches; otherwise a fixed-size page.
func (s *Store) ListProducts(ctx context.Context, query string, page int) ([]models.Product, error) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM products")
	args := []interface{}{}

	if query != "" {
		sb.WriteString(" WHERE name ILIKE $1 OR category ILIKE $1 OR description ILIKE $1")
		args = append(args, "%"+query+"%")
	}
	sb.WriteString(" ORDER BY id")

	if page > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", PageSize, (page-1)*PageSize))
	}

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, sb.String(), args...); err != nil {
		return nil, apperr.Storage("list products", err)
	}
	return products, nil
}

// CountProducts returns the number of products matching query
func (s *Store) CountProducts(ctx context.Context, query string) (int, error) {
	var count int
	var err error
	if query == "" {
		err = s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products")
	} else {
		err = s.db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM products WHERE name ILIKE $1 OR category ILIKE $1 OR description ILIKE $1",
			"%"+query+"%")
	}
	if err != nil {
		return 0, apperr.Storage("count products", err)
	}
	return count, nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, apperr.Storage("get product", err)
	}
	return &product, nil
}

// CreateProduct inserts a product and fills in its assigned ID and timestamps
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, price, category, description, image, sold)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	var assigned struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &assigned, query,
		p.Name, p.Price, p.Category, p.Description, p.Image, p.Sold)
	if err != nil {
		return apperr.Storage("create product", err)
	}
	p.ID = assigned.ID
	p.CreatedAt = assigned.CreatedAt
	p.UpdatedAt = assigned.UpdatedAt
	return nil
}

// UpdateProduct replaces the mutable fields of a product
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, price = $2, category = $3, description = $4, image = $5, sold = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := s.db.GetContext(ctx, &p.UpdatedAt, query,
		p.Name, p.Price, p.Category, p.Description, p.Image, p.Sold, p.ID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("product", p.ID)
	}
	if err != nil {
		return apperr.Storage("update product", err)
	}
	return nil
}

// DeleteProduct removes a product. Orders keep their own line snapshots,
// so deletion never checks order references.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return apperr.Storage("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("delete product", err)
	}
	if n == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

// ToggleProductSold flips the availability flag in a single update and
// returns the updated row
func (s *Store) ToggleProductSold(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"UPDATE products SET sold = NOT sold, updated_at = NOW() WHERE id = $1 RETURNING *",
		id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("product", id)
	}
	if err != nil {
		return nil, apperr.Storage("toggle product sold", err)
	}
	return &product, nil
}
