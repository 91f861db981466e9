package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles checkout and the order status state machine.
//
// Approving an order does not mark its products sold: lines are
// snapshots, and availability stays an explicit admin action
// (toggle-sold).
type OrderService struct {
	store     OrderStore
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderStore OrderStore, publisher EventPublisher) *OrderService {
	return &OrderService{
		store:     orderStore,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// maxIdempotencyKeyLen matches the idempotency_key column width
const maxIdempotencyKeyLen = 64

// CheckoutRequest is a cart snapshot plus customer and payment details
type CheckoutRequest struct {
	Items          models.OrderItems    `json:"items"`
	CustomerInfo   models.CustomerInfo  `json:"customer_info"`
	PaymentMethod  string               `json:"payment_method"`
	Verification   *models.Verification `json:"verification,omitempty"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

// Checkout validates the cart snapshot and creates an order in
// pending_verification. All validation happens before any write; a failed
// checkout leaves no order row and touches neither cart nor catalog.
func (s *OrderService) Checkout(ctx context.Context, req *CheckoutRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	if err := validateCheckout(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	existing, err := s.store.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Duplicate checkout request",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", existing.ID))
		return existing, nil
	}

	var total float64
	for _, item := range req.Items {
		total += item.Subtotal()
	}

	order := &models.Order{
		Items:          req.Items,
		Total:          total,
		CustomerInfo:   req.CustomerInfo,
		PaymentMethod:  req.PaymentMethod,
		Status:         models.OrderStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Verification != nil {
		order.Verification = *req.Verification
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("storage").Inc()
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Float64("total", order.Total))

	if s.publisher != nil {
		event := &models.OrderPlacedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPlaced,
				Timestamp: time.Now(),
			},
			OrderID:       order.ID,
			Total:         order.Total,
			PaymentMethod: order.PaymentMethod,
			Items:         order.Items,
		}
		if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return order, nil
}

// Transition moves an order from pending_verification to approved or
// rejected. Any other target is a validation error; an absent id is
// NotFound; a terminal order is a conflict. The check-and-write is a
// single conditional update in the store, so concurrent transitions on
// one order cannot both succeed.
func (s *OrderService) Transition(ctx context.Context, orderID int64, to string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Transition")
	defer span.End()

	if !models.ValidOutcome(to) {
		util.OrderTransitionsRejected.WithLabelValues("invalid_status").Inc()
		return nil, apperr.Validation("status must be approved or rejected", "status")
	}

	order, err := s.store.TransitionOrderStatus(ctx, orderID, to)
	if err != nil {
		if apperr.IsConflict(err) {
			util.OrderTransitionsRejected.WithLabelValues("terminal").Inc()
		}
		return nil, err
	}

	util.OrderTransitionsTotal.WithLabelValues(to).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("status", to))

	// Notification dispatch happens in the worker; publish failure never
	// rolls back the committed transition.
	if s.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: time.Now(),
			},
			OrderID: order.ID,
			Status:  order.Status,
			Contact: order.CustomerInfo.Email,
		}
		if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// ListOrders retrieves all orders, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

func validateCheckout(req *CheckoutRequest) error {
	if len(req.Items) == 0 {
		return apperr.Validation("cart is empty", "items")
	}

	var total float64
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return apperr.Validation("line quantity must be at least 1", "items")
		}
		if item.Price < 0 {
			return apperr.Validation("line price must not be negative", "items")
		}
		total += item.Subtotal()
	}
	if total <= 0 {
		return apperr.Validation("order total must be positive", "total")
	}

	var missing []string
	if strings.TrimSpace(req.CustomerInfo.Name) == "" {
		missing = append(missing, "customer_info.name")
	}
	if strings.TrimSpace(req.CustomerInfo.Email) == "" {
		missing = append(missing, "customer_info.email")
	}
	if strings.TrimSpace(req.CustomerInfo.Phone) == "" {
		missing = append(missing, "customer_info.phone")
	}
	if strings.TrimSpace(req.CustomerInfo.Address) == "" {
		missing = append(missing, "customer_info.address")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		missing = append(missing, "payment_method")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields", missing...)
	}

	if len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return apperr.Validation("idempotency key must be at most 64 characters", "idempotency_key")
	}
	return nil
}
