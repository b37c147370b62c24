package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeQuantitiesUpdated  EventType = "order.quantities_updated"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypePaymentRecorded    EventType = "payment.recorded"
)

// OrderEvent is the envelope written to the orders topic.
type OrderEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	OrderID       models.ID         `json:"order_id"`
	TerminalID    string            `json:"terminal_id"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// StatusChange is the payload of order.status_changed.
type StatusChange struct {
	PreviousStatus models.OrderStatus `json:"previous_status"`
	NewStatus      models.OrderStatus `json:"new_status"`
}

// PaymentRecorded is the payload of payment.recorded.
type PaymentRecorded struct {
	Cash  decimal.Decimal `json:"cash"`
	Card  decimal.Decimal `json:"card"`
	Total decimal.Decimal `json:"total"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer     messageWriter
	topic      string
	terminalID string
	logger     *logging.LoggerV2
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, terminalID string, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return newKafkaPublisher(writer, cfg.OrdersTopic, terminalID, logger)
}

func newKafkaPublisher(w messageWriter, topic, terminalID string, logger *logging.LoggerV2) *KafkaPublisher {
	return &KafkaPublisher{
		writer:     w,
		topic:      topic,
		terminalID: terminalID,
		logger:     logger,
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	p.logger.Debug("Publishing order created event", logging.Fields{
		"order_id": order.ID,
	})
	return p.publishPayload(ctx, EventTypeOrderCreated, order.ID, order)
}

// PublishQuantitiesUpdated publishes the saved result of an edit session.
func (p *KafkaPublisher) PublishQuantitiesUpdated(ctx context.Context, order models.Order) error {
	p.logger.Debug("Publishing quantities updated event", logging.Fields{
		"order_id":   order.ID,
		"line_count": len(order.Items),
	})
	return p.publishPayload(ctx, EventTypeQuantitiesUpdated, order.ID, order)
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order models.Order, previousStatus models.OrderStatus) error {
	p.logger.Debug("Publishing order status changed event", logging.Fields{
		"order_id":        order.ID,
		"previous_status": previousStatus,
		"new_status":      order.Status,
	})
	return p.publishPayload(ctx, EventTypeOrderStatusChanged, order.ID, StatusChange{
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	})
}

// PublishPaymentRecorded publishes a completed payment.
func (p *KafkaPublisher) PublishPaymentRecorded(ctx context.Context, orderID models.ID, split models.PaymentSplit) error {
	p.logger.Debug("Publishing payment recorded event", logging.Fields{
		"order_id": orderID,
	})
	return p.publishPayload(ctx, EventTypePaymentRecorded, orderID, PaymentRecorded{
		Cash:  split.Cash,
		Card:  split.Card,
		Total: split.Sum(),
	})
}

func (p *KafkaPublisher) publishPayload(ctx context.Context, eventType EventType, orderID models.ID, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.createEvent(ctx, eventType, orderID, data))
}

func (p *KafkaPublisher) createEvent(ctx context.Context, eventType EventType, orderID models.ID, data []byte) *OrderEvent {
	event := &OrderEvent{
		ID:         generateEventID(),
		Type:       eventType,
		OrderID:    orderID,
		TerminalID: p.terminalID,
		Data:       data,
		Metadata:   map[string]string{"topic": p.topic},
		Timestamp:  time.Now().UTC(),
	}

	if requestID := middleware.RequestIDFrom(ctx); requestID != "" {
		event.CorrelationID = requestID
	}

	return event
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "terminal_id", Value: []byte(event.TerminalID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

func generateEventID() string {
	return "evt_" + uuid.NewString()
}

// NoopPublisher drops every event. Used when order events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	return nil
}

func (NoopPublisher) PublishQuantitiesUpdated(ctx context.Context, order models.Order) error {
	return nil
}

func (NoopPublisher) PublishOrderStatusChanged(ctx context.Context, order models.Order, previousStatus models.OrderStatus) error {
	return nil
}

func (NoopPublisher) PublishPaymentRecorded(ctx context.Context, orderID models.ID, split models.PaymentSplit) error {
	return nil
}

// MockEventPublisher is a mock implementation for testing.
type MockEventPublisher struct {
	Events []*OrderEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*OrderEvent, 0),
	}
}

func (m *MockEventPublisher) add(t EventType, orderID models.ID) error {
	m.Events = append(m.Events, &OrderEvent{Type: t, OrderID: orderID})
	return m.Err
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	return m.add(EventTypeOrderCreated, order.ID)
}

func (m *MockEventPublisher) PublishQuantitiesUpdated(ctx context.Context, order models.Order) error {
	return m.add(EventTypeQuantitiesUpdated, order.ID)
}

func (m *MockEventPublisher) PublishOrderStatusChanged(ctx context.Context, order models.Order, previousStatus models.OrderStatus) error {
	return m.add(EventTypeOrderStatusChanged, order.ID)
}

func (m *MockEventPublisher) PublishPaymentRecorded(ctx context.Context, orderID models.ID, split models.PaymentSplit) error {
	return m.add(EventTypePaymentRecorded, orderID)
}

// Types returns the recorded event types in order.
func (m *MockEventPublisher) Types() []EventType {
	out := make([]EventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Type)
	}
	return out
}
