package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
)

// RestaurantAPI is the restaurant REST API as consumed by the terminal.
type RestaurantAPI interface {
	ListOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.RawOrder, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.RawOrder, error)
	UpdateQuantities(ctx context.Context, orderID models.ID, updates []models.QuantityUpdate) (*models.RawOrder, error)
	CompleteOrder(ctx context.Context, orderID models.ID) (*models.RawOrder, error)
	CancelOrder(ctx context.Context, orderID models.ID) (*models.RawOrder, error)
	RecordPayment(ctx context.Context, req models.PaymentRequest) error
	AvailableTables(ctx context.Context) ([]models.RawTable, error)
}

// EventPublisher announces order lifecycle changes.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order models.Order) error
	PublishQuantitiesUpdated(ctx context.Context, order models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order models.Order, previousStatus models.OrderStatus) error
	PublishPaymentRecorded(ctx context.Context, orderID models.ID, split models.PaymentSplit) error
}

// Notifier receives user-facing messages.
type Notifier interface {
	Notify(level notifications.Level, message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(notifications.Level, string) {}
