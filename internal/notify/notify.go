// Package notify defines the outbound customer notification collaborator.
// Delivery itself (email/SMS) is out of scope; the shipped dispatcher only
// records the intent.
package notify

import (
	"context"

	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Dispatcher sends a status notification to a customer contact. Callers
// never retry and never roll back on dispatch failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, contact string, orderID int64, status string) error
}

// LogDispatcher logs the notification instead of delivering it
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a dispatcher that only logs
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{logger: util.GetLogger()}
}

// Dispatch logs the notification intent
func (d *LogDispatcher) Dispatch(ctx context.Context, contact string, orderID int64, status string) error {
	d.logger.Info("Order notification",
		zap.Int64("order_id", orderID),
		zap.String("status", status),
		zap.String("contact", contact))
	return nil
}
