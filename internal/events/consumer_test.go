package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

type appliedStatus struct {
	orderID models.ID
	status  models.OrderStatus
}

type fakeApplier struct {
	applied []appliedStatus
}

func (a *fakeApplier) ApplyRemoteStatus(ctx context.Context, orderID models.ID, status models.OrderStatus) error {
	a.applied = append(a.applied, appliedStatus{orderID, status})
	return nil
}

type fakeReader struct{}

func (fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (fakeReader) Close() error { return nil }

func statusMessage(t *testing.T, terminalID string, eventType EventType) kafka.Message {
	data, err := json.Marshal(StatusChange{
		PreviousStatus: models.OrderStatusOnGoing,
		NewStatus:      models.OrderStatusCancelled,
	})
	require.NoError(t, err)

	value, err := json.Marshal(OrderEvent{
		ID:         "evt_1",
		Type:       eventType,
		OrderID:    "55",
		TerminalID: terminalID,
		Data:       data,
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestStatusConsumer_AppliesRemoteChanges(t *testing.T) {
	applier := &fakeApplier{}
	c := newStatusConsumer(fakeReader{}, "terminal-1", applier, logging.NewLoggerV2("consumer-test"))

	c.handleMessage(context.Background(), statusMessage(t, "terminal-2", EventTypeOrderStatusChanged))

	require.Len(t, applier.applied, 1)
	assert.Equal(t, appliedStatus{"55", models.OrderStatusCancelled}, applier.applied[0])
}

func TestStatusConsumer_IgnoresOwnAndOtherEvents(t *testing.T) {
	applier := &fakeApplier{}
	c := newStatusConsumer(fakeReader{}, "terminal-1", applier, logging.NewLoggerV2("consumer-test"))

	c.handleMessage(context.Background(), statusMessage(t, "terminal-1", EventTypeOrderStatusChanged))
	c.handleMessage(context.Background(), statusMessage(t, "terminal-2", EventTypeOrderCreated))
	c.handleMessage(context.Background(), kafka.Message{Value: []byte("not json")})

	assert.Empty(t, applier.applied)
}

func TestStatusConsumer_StartStopsOnContext(t *testing.T) {
	c := newStatusConsumer(fakeReader{}, "terminal-1", &fakeApplier{}, logging.NewLoggerV2("consumer-test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Start(ctx), context.Canceled)
}
