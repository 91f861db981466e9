package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/notify"
	"storefront-service/internal/util"
)

// NotificationWorker consumes order status events and dispatches customer
// notifications for terminal outcomes. Dispatch failures are logged and
// never fed back into order state.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	dispatcher   notify.Dispatcher
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, dispatcher notify.Dispatcher) *NotificationWorker {
	w := &NotificationWorker{
		consumer:   consumer,
		dispatcher: dispatcher,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

func (w *NotificationWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	util.OrderEventsConsumedTotal.WithLabelValues(models.EventTypeOrderPlaced).Inc()
	log.Printf("Order %d placed: %d lines, total %.2f", event.OrderID, len(event.Items), event.Total)
	return nil
}

func (w *NotificationWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	util.OrderEventsConsumedTotal.WithLabelValues(models.EventTypeOrderStatusChanged).Inc()
	if !models.TerminalStatus(event.Status) {
		return nil
	}

	if err := w.dispatcher.Dispatch(ctx, event.Contact, event.OrderID, event.Status); err != nil {
		log.Printf("Notification dispatch failed for order %d: %v", event.OrderID, err)
		util.NotificationsFailedTotal.Inc()
		return nil
	}

	util.NotificationsDispatchedTotal.Inc()
	return nil
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}
