package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

// EditState is the per-order edit state.
type EditState string

const (
	EditStateViewing   EditState = "VIEWING"
	EditStateEditing   EditState = "EDITING"
	EditStateSaved     EditState = "SAVED"
	EditStateCancelled EditState = "CANCELLED_EDIT"
)

// EditSession is a read-only view of the active edit session.
type EditSession struct {
	OrderID models.ID          `json:"orderId"`
	State   EditState          `json:"state"`
	Lines   []models.OrderLine `json:"lines"`
	Total   decimal.Decimal    `json:"total"`
}

type editSession struct {
	orderID models.ID
	lines   []models.OrderLine
}

func (e *editSession) view() EditSession {
	lines := make([]models.OrderLine, len(e.lines))
	copy(lines, e.lines)
	return EditSession{
		OrderID: e.orderID,
		State:   EditStateEditing,
		Lines:   lines,
		Total:   models.Subtotal(lines),
	}
}

func (e *editSession) index(key string) int {
	for i := range e.lines {
		if e.lines[i].Key() == key {
			return i
		}
	}
	return -1
}

// Reconciler edits the quantities of a placed order. At most one session is active; the
// working copy never aliases the order held in the book.
type Reconciler struct {
	mu      sync.Mutex
	session *editSession

	api      RestaurantAPI
	book     *repository.OrderBook
	events   EventPublisher
	notifier Notifier
	logger   *logging.LoggerV2
}

func NewReconciler(api RestaurantAPI, book *repository.OrderBook, events EventPublisher, notifier Notifier) *Reconciler {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Reconciler{
		api:      api,
		book:     book,
		events:   events,
		notifier: notifier,
		logger:   logging.NewLoggerV2("reconciler"),
	}
}

// Begin opens an edit session on an ON GOING order, discarding any previous session.
func (r *Reconciler) Begin(orderID models.ID) (EditSession, error) {
	order, err := r.book.Get(orderID)
	if err != nil {
		return EditSession{}, err
	}
	if !order.Status.Editable() {
		return EditSession{}, fmt.Errorf("edit order %s in status %s: %w", orderID, order.Status, ErrIllegalTransition)
	}

	s := &editSession{orderID: order.ID, lines: order.Clone().Items}

	r.mu.Lock()
	if r.session != nil && r.session.orderID != orderID {
		r.logger.Info("Discarding previous edit session", logging.Fields{
			"order_id":     r.session.orderID,
			"new_order_id": orderID,
		})
	}
	r.session = s
	view := s.view()
	r.mu.Unlock()

	r.logger.Debug("Edit session started", logging.Fields{
		"order_id":   orderID,
		"line_count": len(view.Lines),
	})
	return view, nil
}

// SetQuantity changes a working line's quantity. Quantities below 1 remove the line.
func (r *Reconciler) SetQuantity(key string, quantity int) (EditSession, error) {
	if quantity < 1 {
		return r.RemoveLine(key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return EditSession{}, ErrNoActiveSession
	}
	i := r.session.index(key)
	if i < 0 {
		return EditSession{}, fmt.Errorf("line %s: %w", key, errors.ErrNotFound)
	}

	lines := make([]models.OrderLine, len(r.session.lines))
	copy(lines, r.session.lines)
	lines[i].Quantity = quantity
	r.session.lines = lines
	return r.session.view(), nil
}

// RemoveLine drops a line from the working copy; it will not be sent on save.
func (r *Reconciler) RemoveLine(key string) (EditSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return EditSession{}, ErrNoActiveSession
	}
	i := r.session.index(key)
	if i < 0 {
		return EditSession{}, fmt.Errorf("line %s: %w", key, errors.ErrNotFound)
	}

	lines := make([]models.OrderLine, 0, len(r.session.lines)-1)
	lines = append(lines, r.session.lines[:i]...)
	lines = append(lines, r.session.lines[i+1:]...)
	r.session.lines = lines
	return r.session.view(), nil
}

// Cancel discards the working copy. The order is left exactly as it was.
func (r *Reconciler) Cancel() (EditSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return EditSession{}, ErrNoActiveSession
	}
	orderID := r.session.orderID
	r.session = nil

	r.logger.Debug("Edit session cancelled", logging.Fields{"order_id": orderID})
	return EditSession{OrderID: orderID, State: EditStateCancelled, Lines: []models.OrderLine{}}, nil
}

// Session returns the active session.
func (r *Reconciler) Session() (EditSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return EditSession{}, ErrNoActiveSession
	}
	return r.session.view(), nil
}

// Save sends the working copy's quantities and, on success, replaces only the edited order in
// the book with totals recomputed locally. An order that left ON GOING while the session was
// open is not sent and closes the session. A line without a server identity fails the save
// before any request and keeps the session open; otherwise the session is closed whatever the
// outcome.
func (r *Reconciler) Save(ctx context.Context) (models.Order, error) {
	r.mu.Lock()
	if r.session == nil {
		r.mu.Unlock()
		return models.Order{}, ErrNoActiveSession
	}
	session := r.session
	current, err := r.book.Get(session.orderID)
	if err != nil {
		r.session = nil
		r.mu.Unlock()
		return models.Order{}, err
	}
	if !current.Status.Editable() {
		r.session = nil
		r.mu.Unlock()
		r.logger.Warn("Refusing to save order that is no longer editable", logging.Fields{
			"order_id": session.orderID,
			"status":   current.Status,
		})
		return models.Order{}, fmt.Errorf("save order %s in status %s: %w", session.orderID, current.Status, ErrIllegalTransition)
	}
	updates, err := BuildQuantityUpdates(session.lines)
	if err != nil {
		r.mu.Unlock()
		r.logger.Warn("Refusing to save order with unidentified lines", logging.Fields{
			"order_id": session.orderID,
			"error":    err.Error(),
		})
		return models.Order{}, err
	}
	lines := make([]models.OrderLine, len(session.lines))
	copy(lines, session.lines)
	r.session = nil
	r.mu.Unlock()

	orderID := session.orderID
	r.logger.Info("Saving order quantities", logging.Fields{
		"order_id":   orderID,
		"line_count": len(updates),
	})

	echo, err := r.api.UpdateQuantities(ctx, orderID, updates)
	metrics.QuantitySaves.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		r.logger.Error("Failed to update order quantities", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		r.notifier.Notify(notifications.LevelError, "Failed to update order")
		return models.Order{}, err
	}

	echoStatus := r.echoStatus(orderID, echo)

	updated, err := r.book.Update(orderID, func(o models.Order) models.Order {
		next := o.WithItems(lines)
		if echoStatus != "" && (o.Status == echoStatus || o.Status.CanTransitionTo(echoStatus)) {
			next.Status = echoStatus
		}
		return next
	})
	if err != nil {
		r.logger.Warn("Saved order no longer tracked locally", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return models.Order{}, err
	}

	if err := r.events.PublishQuantitiesUpdated(ctx, updated); err != nil {
		// Log but don't fail
		r.logger.Error("Failed to publish quantities updated event", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}

	r.notifier.Notify(notifications.LevelSuccess, "Order updated")
	r.logger.Info("Order quantities updated", logging.Fields{
		"order_id": orderID,
		"total":    updated.TotalAmount.String(),
	})
	return updated, nil
}

// echoStatus extracts a usable status from the update echo. An echo for another order is
// stale and ignored.
func (r *Reconciler) echoStatus(orderID models.ID, echo *models.RawOrder) models.OrderStatus {
	if echo == nil {
		return ""
	}
	if id := echo.Identity(); !id.IsZero() && id != orderID {
		r.logger.Warn("Discarding stale quantities echo", logging.Fields{
			"order_id": orderID,
			"echo_id":  id,
		})
		return ""
	}
	status, err := models.ParseOrderStatus(echo.Status)
	if err != nil {
		return ""
	}
	return status
}
