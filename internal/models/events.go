package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when checkout creates an order
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       int64       `json:"order_id"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	Items         []OrderItem `json:"items"`
}

// OrderStatusChangedEvent published when an admin resolves an order.
// Contact carries the customer email so the notification worker does not
// have to read the order back.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
	Contact string `json:"contact"`
}
