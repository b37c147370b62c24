package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// StatusApplier merges a status observed elsewhere into the local order mirror.
type StatusApplier interface {
	ApplyRemoteStatus(ctx context.Context, orderID models.ID, status models.OrderStatus) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// StatusConsumer follows order.status_changed events published by other terminals so that
// orders completed or cancelled elsewhere stop being offered for edit here.
type StatusConsumer struct {
	reader     messageReader
	applier    StatusApplier
	terminalID string
	logger     *logging.LoggerV2
	stopCh     chan struct{}
}

// NewStatusConsumer creates a consumer with its own group so every terminal sees every event.
func NewStatusConsumer(cfg config.KafkaConfig, terminalID string, applier StatusApplier, logger *logging.LoggerV2) *StatusConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.OrdersTopic,
		GroupID:  cfg.ConsumerGroup + "-" + terminalID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return newStatusConsumer(reader, terminalID, applier, logger)
}

func newStatusConsumer(r messageReader, terminalID string, applier StatusApplier, logger *logging.LoggerV2) *StatusConsumer {
	return &StatusConsumer{
		reader:     r,
		applier:    applier,
		terminalID: terminalID,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// Start consumes until ctx is done or Stop is called.
func (c *StatusConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting status consumer", logging.Fields{"terminal_id": c.terminalID})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Status consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *StatusConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *StatusConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	if event.Type != EventTypeOrderStatusChanged {
		return
	}
	if event.TerminalID == c.terminalID {
		return
	}

	var change StatusChange
	if err := json.Unmarshal(event.Data, &change); err != nil {
		c.logger.Error("Failed to unmarshal status change", logging.Fields{
			"event_id": event.ID,
			"error":    err.Error(),
		})
		return
	}

	if err := c.applier.ApplyRemoteStatus(ctx, event.OrderID, change.NewStatus); err != nil {
		c.logger.Warn("Remote status not applied", logging.Fields{
			"order_id":   event.OrderID,
			"new_status": change.NewStatus,
			"error":      err.Error(),
		})
	}
}
