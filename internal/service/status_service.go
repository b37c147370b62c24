package service

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

// StatusService drives orders through ON GOING -> COMPLETED | CANCELLED.
type StatusService struct {
	api      RestaurantAPI
	book     *repository.OrderBook
	events   EventPublisher
	notifier Notifier
	logger   *logging.LoggerV2
}

func NewStatusService(api RestaurantAPI, book *repository.OrderBook, events EventPublisher, notifier Notifier) *StatusService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &StatusService{
		api:      api,
		book:     book,
		events:   events,
		notifier: notifier,
		logger:   logging.NewLoggerV2("status-service"),
	}
}

// Complete marks an ON GOING order COMPLETED.
func (s *StatusService) Complete(ctx context.Context, orderID models.ID) (models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusCompleted)
}

// Cancel marks an ON GOING order CANCELLED.
func (s *StatusService) Cancel(ctx context.Context, orderID models.ID) (models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusCancelled)
}

func (s *StatusService) transition(ctx context.Context, orderID models.ID, target models.OrderStatus) (models.Order, error) {
	current, err := s.book.Get(orderID)
	if err != nil {
		return models.Order{}, err
	}

	if !current.Status.CanTransitionTo(target) {
		return models.Order{}, fmt.Errorf("order %s from %s to %s: %w", orderID, current.Status, target, ErrIllegalTransition)
	}

	s.logger.Info("Updating order status", logging.Fields{
		"order_id":   orderID,
		"new_status": target,
	})

	var echo *models.RawOrder
	if target == models.OrderStatusCompleted {
		echo, err = s.api.CompleteOrder(ctx, orderID)
	} else {
		echo, err = s.api.CancelOrder(ctx, orderID)
	}
	metrics.StatusTransitions.WithLabelValues(target.String(), metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("Failed to update order status", logging.Fields{
			"order_id":   orderID,
			"new_status": target,
			"error":      err.Error(),
		})
		s.notifier.Notify(notifications.LevelError, "Failed to update status")
		return models.Order{}, err
	}

	status := s.resolveStatus(orderID, target, echo)
	previous := current.Status

	applied := true
	updated, err := s.book.Update(orderID, func(o models.Order) models.Order {
		switch {
		case o.Status == status || o.Status.CanTransitionTo(status):
			o.Status = status
		case o.Status.CanTransitionTo(target):
			o.Status = target
		default:
			applied = false
		}
		return o
	})
	if err != nil {
		return models.Order{}, err
	}
	if !applied {
		s.logger.Warn("Order changed status while the request was in flight", logging.Fields{
			"order_id":   orderID,
			"status":     updated.Status,
			"new_status": target,
		})
		return models.Order{}, fmt.Errorf("order %s from %s to %s: %w", orderID, updated.Status, target, ErrIllegalTransition)
	}

	if err := s.events.PublishOrderStatusChanged(ctx, updated, previous); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to publish order status changed event", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}

	s.logger.Info("Order status updated", logging.Fields{
		"order_id":        orderID,
		"previous_status": previous,
		"new_status":      updated.Status,
	})
	return updated, nil
}

// resolveStatus prefers the status echoed for this order and falls back to target. The caller
// still checks the result against the status held when the book is updated.
func (s *StatusService) resolveStatus(orderID models.ID, target models.OrderStatus, echo *models.RawOrder) models.OrderStatus {
	if echo == nil {
		return target
	}
	if id := echo.Identity(); !id.IsZero() && id != orderID {
		s.logger.Warn("Discarding stale status echo", logging.Fields{
			"order_id": orderID,
			"echo_id":  id,
		})
		return target
	}
	if status, err := models.ParseOrderStatus(echo.Status); err == nil {
		return status
	}
	return target
}

// ApplyRemoteStatus merges a status change made on another terminal. Only forward
// transitions are applied; unknown orders are ignored.
func (s *StatusService) ApplyRemoteStatus(ctx context.Context, orderID models.ID, status models.OrderStatus) error {
	current, err := s.book.Get(orderID)
	if err != nil {
		s.logger.Debug("Remote status for untracked order", logging.Fields{"order_id": orderID})
		return nil
	}
	if current.Status == status {
		return nil
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("order %s from %s to %s: %w", orderID, current.Status, status, ErrIllegalTransition)
	}

	_, err = s.book.Update(orderID, func(o models.Order) models.Order {
		o.Status = status
		return o
	})
	return err
}
