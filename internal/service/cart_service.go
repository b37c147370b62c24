package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

// CartView is the cart as shown to the operator.
type CartView struct {
	Lines  []models.CartLine `json:"lines"`
	Totals OrderTotal        `json:"totals"`
}

// CartService holds the pre-order cart. None of its operations fail: unknown ids are
// ignored and store errors are only logged.
type CartService struct {
	mu      sync.Mutex
	lines   []models.CartLine
	version uint64

	persistMu sync.Mutex
	persisted uint64

	store    repository.CartStore
	notifier Notifier
	taxRate  decimal.Decimal
	logger   *logging.LoggerV2
}

// NewCartService creates a cart backed by store.
func NewCartService(store repository.CartStore, notifier Notifier, taxRate decimal.Decimal) *CartService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CartService{
		lines:    []models.CartLine{},
		store:    store,
		notifier: notifier,
		taxRate:  taxRate,
		logger:   logging.NewLoggerV2("cart-service"),
	}
}

// Restore loads a previously persisted cart.
func (s *CartService) Restore(ctx context.Context) error {
	lines, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lines = make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID.IsZero() || l.Quantity < 1 {
			continue
		}
		s.lines = append(s.lines, l)
	}
	s.version++
	count := len(s.lines)
	s.mu.Unlock()

	s.logger.Info("Cart restored", logging.Fields{"lines": count})
	return nil
}

// AddItem merges the product into the cart, incrementing an existing line.
func (s *CartService) AddItem(ctx context.Context, product models.ProductRecord) CartView {
	id := product.Identity()
	if id.IsZero() {
		s.logger.Warn("Ignoring product without identity", logging.Fields{"name": product.Name})
		return s.Cart(ctx)
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].ProductID == id {
			s.lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, models.NewCartLine(product))
	}
	view, snapshot, version := s.commitLocked()
	s.mu.Unlock()

	metrics.CartOperations.WithLabelValues("add").Inc()
	s.persist(ctx, snapshot, version)
	s.notifier.Notify(notifications.LevelSuccess, "Product added to cart")
	return view
}

// UpdateQuantity adds delta to a line's quantity, never going below 1.
func (s *CartService) UpdateQuantity(ctx context.Context, productID models.ID, delta int) CartView {
	s.mu.Lock()
	i := s.indexLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return s.Cart(ctx)
	}
	qty := s.lines[i].Quantity + delta
	if qty < 1 {
		qty = 1
	}
	s.lines[i].Quantity = qty
	view, snapshot, version := s.commitLocked()
	s.mu.Unlock()

	metrics.CartOperations.WithLabelValues("update").Inc()
	s.persist(ctx, snapshot, version)
	return view
}

// RemoveItem deletes a line.
func (s *CartService) RemoveItem(ctx context.Context, productID models.ID) CartView {
	s.mu.Lock()
	i := s.indexLocked(productID)
	if i < 0 {
		s.mu.Unlock()
		return s.Cart(ctx)
	}
	removed := s.lines[i]
	next := make([]models.CartLine, 0, len(s.lines)-1)
	next = append(next, s.lines[:i]...)
	s.lines = append(next, s.lines[i+1:]...)
	view, snapshot, version := s.commitLocked()
	s.mu.Unlock()

	metrics.CartOperations.WithLabelValues("remove").Inc()
	s.persist(ctx, snapshot, version)
	s.notifier.Notify(notifications.LevelInfo, fmt.Sprintf("%q removed from cart", removed.Name))
	return view
}

// Clear empties the cart. Only order submission calls it, after the order was created.
func (s *CartService) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = []models.CartLine{}
	_, snapshot, version := s.commitLocked()
	s.mu.Unlock()

	metrics.CartOperations.WithLabelValues("clear").Inc()
	s.persist(ctx, snapshot, version)
}

// Cart returns the current lines and totals.
func (s *CartService) Cart(ctx context.Context) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Lines returns a copy of the current lines.
func (s *CartService) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *CartService) indexLocked(productID models.ID) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *CartService) copyLocked() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *CartService) viewLocked() CartView {
	lines := s.copyLocked()
	return CartView{Lines: lines, Totals: CalculateTotals(lines, s.taxRate)}
}

func (s *CartService) commitLocked() (CartView, []models.CartLine, uint64) {
	s.version++
	return s.viewLocked(), s.copyLocked(), s.version
}

// persist writes snapshot unless a newer version was already written.
func (s *CartService) persist(ctx context.Context, snapshot []models.CartLine, version uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version <= s.persisted {
		return
	}
	s.persisted = version

	var err error
	if len(snapshot) == 0 {
		err = s.store.Clear(ctx)
	} else {
		err = s.store.Save(ctx, snapshot)
	}
	if err != nil {
		// Log but don't fail
		s.logger.Error("Failed to persist cart", logging.Fields{
			"lines": len(snapshot),
			"error": err.Error(),
		})
	}
}
