package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

// PaymentShortcut is one of the fixed partitions offered by the payment dialog.
type PaymentShortcut string

const (
	ShortcutAllCash PaymentShortcut = "ALL_CASH"
	ShortcutAllCard PaymentShortcut = "ALL_CARD"
	ShortcutSplit   PaymentShortcut = "SPLIT"
)

// ParsePaymentShortcut accepts the shortcut names case-insensitively.
func ParsePaymentShortcut(s string) (PaymentShortcut, error) {
	switch PaymentShortcut(strings.ToUpper(strings.TrimSpace(s))) {
	case ShortcutAllCash:
		return ShortcutAllCash, nil
	case ShortcutAllCard:
		return ShortcutAllCard, nil
	case ShortcutSplit:
		return ShortcutSplit, nil
	}
	return "", errors.NewValidationError("shortcut", fmt.Sprintf("unknown payment shortcut %q", s))
}

const labelCompletePayment = "Complete payment"

// PaymentView is the state of the payment dialog.
type PaymentView struct {
	OrderID     models.ID       `json:"orderId"`
	Total       decimal.Decimal `json:"total"`
	Cash        decimal.Decimal `json:"cash"`
	Card        decimal.Decimal `json:"card"`
	CanComplete bool            `json:"canComplete"`
	Label       string          `json:"label"`
}

type paymentFlow struct {
	orderID    models.ID
	total      decimal.Decimal
	split      models.PaymentSplit
	completing bool
}

func (f *paymentFlow) view() PaymentView {
	v := PaymentView{
		OrderID:     f.orderID,
		Total:       f.total,
		Cash:        f.split.Cash,
		Card:        f.split.Card,
		CanComplete: f.split.Balances(f.total),
	}
	if v.CanComplete {
		v.Label = labelCompletePayment
	} else {
		v.Label = "Incorrect amount: cash + card must equal " + f.total.StringFixed(2)
	}
	return v
}

// PaymentService splits an order's total between cash and card and completes the order.
type PaymentService struct {
	mu   sync.Mutex
	flow *paymentFlow

	api        RestaurantAPI
	book       *repository.OrderBook
	status     *StatusService
	journal    repository.PaymentJournal
	events     EventPublisher
	notifier   Notifier
	terminalID string
	logger     *logging.LoggerV2
}

// NewPaymentService creates a new payment service. journal may be nil.
func NewPaymentService(
	api RestaurantAPI,
	book *repository.OrderBook,
	status *StatusService,
	journal repository.PaymentJournal,
	events EventPublisher,
	notifier Notifier,
	terminalID string,
) *PaymentService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &PaymentService{
		api:        api,
		book:       book,
		status:     status,
		journal:    journal,
		events:     events,
		notifier:   notifier,
		terminalID: terminalID,
		logger:     logging.NewLoggerV2("payment-service"),
	}
}

// Open starts a payment flow for an ON GOING order with cash = card = 0.
func (s *PaymentService) Open(orderID models.ID) (PaymentView, error) {
	order, err := s.book.Get(orderID)
	if err != nil {
		return PaymentView{}, err
	}
	if !order.Status.CanTransitionTo(models.OrderStatusCompleted) {
		return PaymentView{}, fmt.Errorf("pay order %s in status %s: %w", orderID, order.Status, ErrIllegalTransition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow != nil && s.flow.completing {
		return PaymentView{}, ErrPaymentInProgress
	}
	s.flow = &paymentFlow{
		orderID: order.ID,
		total:   OrderAmount(order),
		split:   models.PaymentSplit{Cash: decimal.Zero, Card: decimal.Zero},
	}

	s.logger.Debug("Payment flow opened", logging.Fields{
		"order_id": orderID,
		"total":    s.flow.total.String(),
	})
	return s.flow.view(), nil
}

// ChooseShortcut overwrites both amounts with a fixed partition.
func (s *PaymentService) ChooseShortcut(shortcut PaymentShortcut) (PaymentView, error) {
	return s.mutate(func(f *paymentFlow) error {
		switch shortcut {
		case ShortcutAllCash:
			f.split = models.PaymentSplit{Cash: f.total, Card: decimal.Zero}
		case ShortcutAllCard:
			f.split = models.PaymentSplit{Cash: decimal.Zero, Card: f.total}
		case ShortcutSplit:
			half := f.total.Div(decimal.NewFromInt(2))
			f.split = models.PaymentSplit{Cash: half, Card: half}
		default:
			return errors.NewValidationError("shortcut", fmt.Sprintf("unknown payment shortcut %q", shortcut))
		}
		return nil
	})
}

// SetCash sets the cash amount (clamped to >= 0) and derives card as max(0, total - cash).
func (s *PaymentService) SetCash(v decimal.Decimal) (PaymentView, error) {
	return s.mutate(func(f *paymentFlow) error {
		cash := clampNonNegative(v)
		f.split = models.PaymentSplit{Cash: cash, Card: clampNonNegative(f.total.Sub(cash))}
		return nil
	})
}

// SetCard sets the card amount (clamped to >= 0) and derives cash as max(0, total - card).
func (s *PaymentService) SetCard(v decimal.Decimal) (PaymentView, error) {
	return s.mutate(func(f *paymentFlow) error {
		card := clampNonNegative(v)
		f.split = models.PaymentSplit{Cash: clampNonNegative(f.total.Sub(card)), Card: card}
		return nil
	})
}

// SetSplit sets both amounts as entered, without deriving either.
func (s *PaymentService) SetSplit(cash, card decimal.Decimal) (PaymentView, error) {
	return s.mutate(func(f *paymentFlow) error {
		f.split = models.PaymentSplit{Cash: clampNonNegative(cash), Card: clampNonNegative(card)}
		return nil
	})
}

// View returns the current dialog state.
func (s *PaymentService) View() (PaymentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow == nil {
		return PaymentView{}, ErrNoActiveSession
	}
	return s.flow.view(), nil
}

// Close abandons the flow. Nothing is sent.
func (s *PaymentService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flow != nil && !s.flow.completing {
		s.flow = nil
	}
}

// Complete posts the payment record and then marks the order COMPLETED. The order must still be
// ON GOING in the book before anything is sent. The second step is skipped if the first fails,
// and any failure leaves the flow open for another attempt.
func (s *PaymentService) Complete(ctx context.Context) (models.Order, error) {
	s.mu.Lock()
	flow := s.flow
	if flow == nil {
		s.mu.Unlock()
		return models.Order{}, ErrNoActiveSession
	}
	if flow.completing {
		s.mu.Unlock()
		return models.Order{}, ErrPaymentInProgress
	}
	if !flow.split.Balances(flow.total) {
		view := flow.view()
		s.mu.Unlock()
		return models.Order{}, fmt.Errorf("%s: %w", view.Label, ErrSplitMismatch)
	}
	current, err := s.book.Get(flow.orderID)
	if err != nil {
		s.mu.Unlock()
		return models.Order{}, err
	}
	if !current.Status.CanTransitionTo(models.OrderStatusCompleted) {
		s.mu.Unlock()
		s.logger.Warn("Refusing payment for order that is no longer payable", logging.Fields{
			"order_id": flow.orderID,
			"status":   current.Status,
		})
		return models.Order{}, fmt.Errorf("pay order %s in status %s: %w", flow.orderID, current.Status, ErrIllegalTransition)
	}
	flow.completing = true
	orderID, split := flow.orderID, flow.split
	s.mu.Unlock()

	order, err := s.complete(ctx, orderID, split)
	metrics.PaymentsCompleted.WithLabelValues(metrics.Result(err)).Inc()

	s.mu.Lock()
	flow.completing = false
	if err == nil && s.flow == flow {
		s.flow = nil
	}
	s.mu.Unlock()

	return order, err
}

func (s *PaymentService) complete(ctx context.Context, orderID models.ID, split models.PaymentSplit) (models.Order, error) {
	s.logger.Info("Completing payment", logging.Fields{
		"order_id": orderID,
		"cash":     split.Cash.String(),
		"card":     split.Card.String(),
	})

	req := models.PaymentRequest{OrderID: orderID, Payments: split.Entries()}
	if err := s.api.RecordPayment(ctx, req); err != nil {
		s.logger.Error("Failed to record payment", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		s.notifier.Notify(notifications.LevelError, "Failed to complete payment")
		return models.Order{}, err
	}

	// TODO: send an idempotency key once the restaurant API accepts one; a retry after this
	// call fails records the payment a second time.
	order, err := s.status.Complete(ctx, orderID)
	if err != nil {
		s.logger.Error("Payment recorded but order not completed", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		s.notifier.Notify(notifications.LevelError, "Failed to complete payment")
		return models.Order{}, err
	}

	if s.journal != nil {
		rec := repository.PaymentRecord{
			OrderID:    orderID,
			TerminalID: s.terminalID,
			Cash:       split.Cash,
			Card:       split.Card,
			Total:      split.Sum(),
			RecordedAt: time.Now().UTC(),
		}
		if err := s.journal.RecordPayment(ctx, rec); err != nil {
			// Log but don't fail
			s.logger.Error("Failed to journal payment", logging.Fields{
				"order_id": orderID,
				"error":    err.Error(),
			})
		}
	}

	if err := s.events.PublishPaymentRecorded(ctx, orderID, split); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to publish payment recorded event", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}

	s.notifier.Notify(notifications.LevelSuccess, "Payment completed")
	s.logger.Info("Payment completed", logging.Fields{
		"order_id": orderID,
		"total":    split.Sum().String(),
	})
	return order, nil
}

// DailySummary reports the journaled payments of one day.
func (s *PaymentService) DailySummary(ctx context.Context, day time.Time) (*repository.DailySummary, error) {
	if s.journal == nil {
		return nil, fmt.Errorf("payment journal disabled: %w", errors.ErrNotFound)
	}
	return s.journal.DailySummary(ctx, day)
}

func (s *PaymentService) mutate(fn func(f *paymentFlow) error) (PaymentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow == nil {
		return PaymentView{}, ErrNoActiveSession
	}
	if s.flow.completing {
		return PaymentView{}, ErrPaymentInProgress
	}
	if err := fn(s.flow); err != nil {
		return PaymentView{}, err
	}
	return s.flow.view(), nil
}

func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
