package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

const (
	msgOrderPlaced       = "Order placed!"
	msgOrderCreateFailed = "Failed to create order. Please try again."
)

// CheckoutService turns the cart into a persisted order.
type CheckoutService struct {
	api        RestaurantAPI
	cart       *CartService
	book       *repository.OrderBook
	events     EventPublisher
	notifier   Notifier
	operatorID models.ID
	tables     singleflight.Group
	now        func() time.Time
	logger     *logging.LoggerV2
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	api RestaurantAPI,
	cart *CartService,
	book *repository.OrderBook,
	events EventPublisher,
	notifier Notifier,
	operatorID models.ID,
) *CheckoutService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CheckoutService{
		api:        api,
		cart:       cart,
		book:       book,
		events:     events,
		notifier:   notifier,
		operatorID: operatorID,
		now:        time.Now,
		logger:     logging.NewLoggerV2("checkout-service"),
	}
}

// Submit creates an order from the current cart for tableID. Preconditions are checked before
// any request is made; on failure the cart is left as it was.
func (s *CheckoutService) Submit(ctx context.Context, tableID models.ID) (models.Order, error) {
	lines := s.cart.Lines()
	if err := ValidateSubmission(lines, tableID); err != nil {
		return models.Order{}, err
	}

	req := s.buildRequest(lines, tableID)

	s.logger.Info("Submitting order", logging.Fields{
		"table_id":   tableID,
		"item_count": len(req.Items),
		"total":      req.Total.String(),
	})

	created, err := s.api.CreateOrder(ctx, req)
	metrics.OrdersSubmitted.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("Failed to create order", logging.Fields{
			"table_id": tableID,
			"error":    err.Error(),
		})
		s.notifier.Notify(notifications.LevelError, msgOrderCreateFailed)
		return models.Order{}, err
	}

	order := s.normalizeCreated(created, req, lines)

	s.cart.Clear(ctx)

	if order.ID.IsZero() {
		s.logger.Warn("Created order has no id, not tracked locally", logging.Fields{"table_id": tableID})
	} else {
		s.book.Upsert(order)
	}

	s.notifier.Notify(notifications.LevelSuccess, msgOrderPlaced)

	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to publish order created event", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order created successfully", logging.Fields{
		"order_id": order.ID,
		"total":    order.TotalAmount.String(),
	})

	return order, nil
}

func (s *CheckoutService) buildRequest(lines []models.CartLine, tableID models.ID) models.CreateOrderRequest {
	items := make([]models.CreateOrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.CreateOrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}

	return models.CreateOrderRequest{
		UserID:   s.operatorID,
		Status:   models.OrderStatusOnGoing,
		PlacedAt: models.FormatTimestamp(s.now()),
		Total:    models.Subtotal(lines),
		TableID:  tableID,
		Items:    items,
	}
}

// normalizeCreated fills in whatever the creation echo left out from the request itself.
func (s *CheckoutService) normalizeCreated(created *models.RawOrder, req models.CreateOrderRequest, lines []models.CartLine) models.Order {
	var order models.Order
	if created != nil {
		order = models.NormalizeOrder(*created)
	}

	if order.TableID == nil {
		t := req.TableID
		order.TableID = &t
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = models.ParseTimestamp(req.PlacedAt)
	}

	if created == nil || len(created.Items) == 0 {
		items := make([]models.OrderLine, 0, len(lines))
		for _, l := range lines {
			items = append(items, models.NormalizeOrderLine(models.RawOrderLine{
				ProductID: l.ProductID,
				Name:      l.Name,
				Quantity:  l.Quantity,
				Price:     decimal.NewNullDecimal(l.UnitPrice),
			}))
		}
		order = order.WithItems(items)
	}

	return order
}

// AvailableTables lists the tables an order can be placed on. Concurrent callers share one
// upstream request.
func (s *CheckoutService) AvailableTables(ctx context.Context) ([]models.Table, error) {
	v, err, shared := s.tables.Do("available", func() (interface{}, error) {
		raw, err := s.api.AvailableTables(ctx)
		if err != nil {
			return nil, err
		}
		tables := make([]models.Table, 0, len(raw))
		for _, r := range raw {
			tables = append(tables, models.NormalizeTable(r))
		}
		return tables, nil
	})
	if err != nil {
		s.logger.Error("Failed to fetch available tables", logging.Fields{"error": err.Error()})
		return nil, err
	}

	if shared {
		s.logger.Debug("Available tables request was shared")
	}

	src := v.([]models.Table)
	out := make([]models.Table, len(src))
	copy(out, src)
	return out, nil
}
