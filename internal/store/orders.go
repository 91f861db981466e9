package store

import (
	"context"
	"database/sql"
	"errors"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// CreateOrder inserts an order with its line snapshots in one statement.
// The row is written whole or not at all; there is no partial order state.
// When a concurrent checkout already inserted the same idempotency key,
// the existing order is loaded into order instead of surfacing the
// unique violation.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (items, total, customer_info, payment_method, verification, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		order.Items, order.Total, order.CustomerInfo, order.PaymentMethod,
		order.Verification, order.Status, order.IdempotencyKey)

	if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			existing, getErr := s.GetOrderByIdempotencyKey(ctx, order.IdempotencyKey)
			if getErr == nil && existing != nil {
				*order = *existing
				return nil
			}
		}
		return apperr.Storage("create order", err)
	}
	return nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, apperr.Storage("get order", err)
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key.
// Returns (nil, nil) when no order carries the key.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("get order by idempotency key", err)
	}
	return &order, nil
}

// ListOrders retrieves all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, apperr.Storage("list orders", err)
	}
	return orders, nil
}

// TransitionOrderStatus moves an order out of pending_verification with a
// single conditional update, so two concurrent transitions on the same
// order can never both succeed. Returns the updated order, NotFound for an
// unknown id, or Conflict when the order is already terminal.
func (s *Store) TransitionOrderStatus(ctx context.Context, id int64, to string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING *`,
		to, id, models.OrderStatusPending)

	if err == nil {
		return &order, nil
	}
	if err != sql.ErrNoRows {
		return nil, apperr.Storage("transition order status", err)
	}

	// No row matched: distinguish a missing order from a terminal one
	existing, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, apperr.Conflict("order", id, "already "+existing.Status)
}

// GetSettings returns the singleton settings row
func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.GetContext(ctx, &settings, "SELECT * FROM settings ORDER BY id LIMIT 1")
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("settings", 1)
	}
	if err != nil {
		return nil, apperr.Storage("get settings", err)
	}
	return &settings, nil
}

// UpsertSettings creates or replaces the singleton settings row
func (s *Store) UpsertSettings(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (id, store_name, address, contact, email, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET store_name = EXCLUDED.store_name,
		    address = EXCLUDED.address,
		    contact = EXCLUDED.contact,
		    email = EXCLUDED.email,
		    updated_at = NOW()
		RETURNING id, updated_at`

	row := s.db.QueryRowxContext(ctx, query,
		settings.StoreName, settings.Address, settings.Contact, settings.Email)
	if err := row.Scan(&settings.ID, &settings.UpdatedAt); err != nil {
		return apperr.Storage("upsert settings", err)
	}
	return nil
}
