package repository

import (
	"sync"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// ChangeKind describes what happened to the order book.
type ChangeKind string

const (
	ChangeLoaded   ChangeKind = "loaded"
	ChangeInserted ChangeKind = "inserted"
	ChangeReplaced ChangeKind = "replaced"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind    ChangeKind
	OrderID models.ID
}

// OrderBook is the terminal's local mirror of the restaurant's orders. Every mutation swaps a
// single order for a fresh value matched by id; readers always receive deep copies.
type OrderBook struct {
	mu     sync.RWMutex
	orders []models.Order

	subMu       sync.Mutex
	subscribers map[int]func(Change)
	nextSub     int
}

func NewOrderBook() *OrderBook {
	return &OrderBook{subscribers: make(map[int]func(Change))}
}

// Load replaces the whole collection, e.g. after a listing refresh.
func (b *OrderBook) Load(orders []models.Order) {
	next := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		next = append(next, o.Clone())
	}

	b.mu.Lock()
	b.orders = next
	b.mu.Unlock()

	b.notify(Change{Kind: ChangeLoaded})
}

// Get returns a copy of the order with the given id.
func (b *OrderBook) Get(id models.ID) (models.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.indexOf(id); i >= 0 {
		return b.orders[i].Clone(), nil
	}
	return models.Order{}, errors.ErrNotFound
}

// List returns copies of every order in display order.
func (b *OrderBook) List() []models.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o.Clone())
	}
	return out
}

// Upsert inserts order, or replaces the order with the same id.
func (b *OrderBook) Upsert(order models.Order) {
	kind := ChangeInserted

	b.mu.Lock()
	next := make([]models.Order, len(b.orders), len(b.orders)+1)
	copy(next, b.orders)
	if i := b.indexOf(order.ID); i >= 0 {
		next[i] = order.Clone()
		kind = ChangeReplaced
	} else {
		next = append(next, order.Clone())
	}
	b.orders = next
	b.mu.Unlock()

	b.notify(Change{Kind: kind, OrderID: order.ID})
}

// Update replaces exactly the order whose id equals id with fn's result. No other order is
// touched. fn receives a copy and must not retain it.
func (b *OrderBook) Update(id models.ID, fn func(models.Order) models.Order) (models.Order, error) {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return models.Order{}, errors.ErrNotFound
	}

	updated := fn(b.orders[i].Clone())
	updated.ID = b.orders[i].ID

	next := make([]models.Order, len(b.orders))
	copy(next, b.orders)
	next[i] = updated.Clone()
	b.orders = next
	b.mu.Unlock()

	b.notify(Change{Kind: ChangeReplaced, OrderID: id})
	return updated, nil
}

// Subscribe registers fn for change notifications. The returned func unregisters it.
// Callbacks run synchronously after the book's lock is released.
func (b *OrderBook) Subscribe(fn func(Change)) func() {
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subscribers[id] = fn
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		delete(b.subscribers, id)
		b.subMu.Unlock()
	}
}

func (b *OrderBook) notify(c Change) {
	b.subMu.Lock()
	fns := make([]func(Change), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (b *OrderBook) indexOf(id models.ID) int {
	if id.IsZero() {
		return -1
	}
	for i := range b.orders {
		if b.orders[i].ID == id {
			return i
		}
	}
	return -1
}
