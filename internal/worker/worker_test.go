package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDispatcher records dispatch calls
type fakeDispatcher struct {
	contacts []string
	statuses []string
	err      error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, contact string, orderID int64, status string) error {
	d.contacts = append(d.contacts, contact)
	d.statuses = append(d.statuses, status)
	return d.err
}

func eventMessage(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func statusChangedEvent(status string) *models.OrderStatusChangedEvent {
	return &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: 7,
		Status:  status,
		Contact: "jordan@example.com",
	}
}

func TestWorkerDispatchesTerminalStatus(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	w := NewNotificationWorker(nil, dispatcher)

	msg := eventMessage(t, statusChangedEvent(models.OrderStatusApproved))
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	require.Len(t, dispatcher.contacts, 1)
	assert.Equal(t, "jordan@example.com", dispatcher.contacts[0])
	assert.Equal(t, models.OrderStatusApproved, dispatcher.statuses[0])
}

func TestWorkerSkipsNonTerminalStatus(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	w := NewNotificationWorker(nil, dispatcher)

	msg := eventMessage(t, statusChangedEvent(models.OrderStatusPending))
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Empty(t, dispatcher.contacts)
}

func TestWorkerSwallowsDispatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("smtp unreachable")}
	w := NewNotificationWorker(nil, dispatcher)

	msg := eventMessage(t, statusChangedEvent(models.OrderStatusRejected))
	assert.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))
}

func TestWorkerConsumesOrderPlaced(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	w := NewNotificationWorker(nil, dispatcher)

	counter := util.OrderEventsConsumedTotal.WithLabelValues(models.EventTypeOrderPlaced)
	before := testutil.ToFloat64(counter)

	msg := eventMessage(t, &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-2",
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:       7,
		Total:         179.98,
		PaymentMethod: "bank_transfer",
		Items: models.OrderItems{
			{ProductID: 1, Name: "Running Shoes", Price: 89.99, Quantity: 2},
		},
	})
	require.NoError(t, w.eventHandler.HandleMessage(context.Background(), msg))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Empty(t, dispatcher.contacts, "placed events carry no contact to notify")
}
