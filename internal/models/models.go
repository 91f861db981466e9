package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Product represents a catalog entry
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Price       float64   `db:"price" json:"price"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	Sold        bool      `db:"sold" json:"sold"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// KnownCategories is the set of categories accepted on create/update
var KnownCategories = map[string]bool{
	"sports":  true,
	"casual":  true,
	"formal":  true,
	"sandals": true,
}

// OrderItem is a denormalized line captured from the cart at checkout.
// Name, price and image are snapshots; later catalog edits do not touch them.
type OrderItem struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns price * quantity for the line
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderItems is stored as a JSONB column on the order row
type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *OrderItems) Scan(src interface{}) error {
	return scanJSON(src, o)
}

// CustomerInfo holds the contact record submitted at checkout
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city,omitempty"`
}

func (c CustomerInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CustomerInfo) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// Verification holds the optional manual payment proof
type Verification struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Screenshot    string `json:"screenshot,omitempty"`
}

func (v Verification) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *Verification) Scan(src interface{}) error {
	if src == nil {
		*v = Verification{}
		return nil
	}
	return scanJSON(src, v)
}

// Order represents a customer order
type Order struct {
	ID             int64        `db:"id" json:"id"`
	Items          OrderItems   `db:"items" json:"items"`
	Total          float64      `db:"total" json:"total"`
	CustomerInfo   CustomerInfo `db:"customer_info" json:"customer_info"`
	PaymentMethod  string       `db:"payment_method" json:"payment_method"`
	Verification   Verification `db:"verification" json:"verification,omitempty"`
	Status         string       `db:"status" json:"status"`
	IdempotencyKey string       `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending  = "pending_verification"
	OrderStatusApproved = "approved"
	OrderStatusRejected = "rejected"
)

// ValidOutcome reports whether s is a status an order may transition to
func ValidOutcome(s string) bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}

// TerminalStatus reports whether s permits no further transitions
func TerminalStatus(s string) bool {
	return s == OrderStatusApproved || s == OrderStatusRejected
}

// Settings is the singleton store profile record
type Settings struct {
	ID        int64     `db:"id" json:"-"`
	StoreName string    `db:"store_name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Contact   string    `db:"contact" json:"contact"`
	Email     string    `db:"email" json:"email"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
