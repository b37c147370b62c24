package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_PublishOrderStatusChanged(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "pos.orders", "terminal-1", logging.NewLoggerV2("publisher-test"))

	ctx := middleware.WithRequestID(context.Background(), "req-9")
	order := models.Order{ID: "55", Status: models.OrderStatusCompleted}

	require.NoError(t, p.PublishOrderStatusChanged(ctx, order, models.OrderStatusOnGoing))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "55", string(msg.Key))
	assert.Equal(t, "order.status_changed", header(msg, "event_type"))
	assert.Equal(t, "terminal-1", header(msg, "terminal_id"))

	var event OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "req-9", event.CorrelationID)
	assert.Equal(t, models.ID("55"), event.OrderID)

	var change StatusChange
	require.NoError(t, json.Unmarshal(event.Data, &change))
	assert.Equal(t, models.OrderStatusOnGoing, change.PreviousStatus)
	assert.Equal(t, models.OrderStatusCompleted, change.NewStatus)
}

func TestKafkaPublisher_PublishPaymentRecorded(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "pos.orders", "terminal-1", logging.NewLoggerV2("publisher-test"))

	split := models.PaymentSplit{Cash: decimal.NewFromInt(20), Card: decimal.NewFromInt(25)}
	require.NoError(t, p.PublishPaymentRecorded(context.Background(), "55", split))

	var event OrderEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, EventTypePaymentRecorded, event.Type)

	var payload PaymentRecorded
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.True(t, payload.Total.Equal(decimal.NewFromInt(45)))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, "pos.orders", "terminal-1", logging.NewLoggerV2("publisher-test"))

	err := p.PublishOrderCreated(context.Background(), models.Order{ID: "1"})
	assert.EqualError(t, err, "broker down")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
