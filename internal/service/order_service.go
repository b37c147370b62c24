package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

// FilterAll selects orders of every status.
const FilterAll = "ALL"

// OrderService loads orders from the restaurant API into the order book.
type OrderService struct {
	api      RestaurantAPI
	book     *repository.OrderBook
	notifier Notifier
	logger   *logging.LoggerV2
}

// NewOrderService creates a new order service.
func NewOrderService(api RestaurantAPI, book *repository.OrderBook, notifier Notifier) *OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &OrderService{
		api:      api,
		book:     book,
		notifier: notifier,
		logger:   logging.NewLoggerV2("order-service"),
	}
}

// ParseFilter maps a status filter to the statuses to fetch. An empty filter means ALL.
func ParseFilter(filter string) ([]models.OrderStatus, error) {
	if f := strings.TrimSpace(filter); f == "" || strings.EqualFold(f, FilterAll) {
		return models.OrderStatuses, nil
	}
	status, err := models.ParseOrderStatus(filter)
	if err != nil {
		return nil, errors.NewValidationError("status", err.Error())
	}
	return []models.OrderStatus{status}, nil
}

// Refresh replaces the book's contents with the orders matching filter. ALL issues one request
// per status concurrently and concatenates the results in status order. If any request fails
// the book is left untouched.
func (s *OrderService) Refresh(ctx context.Context, filter string) ([]models.Order, error) {
	statuses, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	results := make([][]models.RawOrder, len(statuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range statuses {
		i, status := i, status
		g.Go(func() error {
			raw, err := s.api.ListOrdersByStatus(gctx, status)
			if err != nil {
				return fmt.Errorf("list %s orders: %w", status, err)
			}
			results[i] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load orders", logging.Fields{
			"filter": filter,
			"error":  err.Error(),
		})
		s.notifier.Notify(notifications.LevelError, "Failed to load orders")
		return nil, err
	}

	orders := make([]models.Order, 0)
	for _, raw := range results {
		for _, r := range raw {
			orders = append(orders, models.NormalizeOrder(r))
		}
	}

	s.book.Load(orders)

	s.logger.Info("Orders loaded", logging.Fields{
		"filter": filter,
		"count":  len(orders),
	})
	return s.book.List(), nil
}

// Orders returns the orders currently held.
func (s *OrderService) Orders() []models.Order {
	return s.book.List()
}

// Order returns one held order.
func (s *OrderService) Order(id models.ID) (models.Order, error) {
	return s.book.Get(id)
}
