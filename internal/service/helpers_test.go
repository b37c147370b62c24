package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
)

type fixture struct {
	api    *clients.MockRestaurantClient
	book   *repository.OrderBook
	events *events.MockEventPublisher
	feed   *notifications.Feed
	store  *repository.MemoryCartStore
}

func newFixture() *fixture {
	return &fixture{
		api:    clients.NewMockRestaurantClient(),
		book:   repository.NewOrderBook(),
		events: events.NewMockEventPublisher(),
		feed:   notifications.NewFeed(50),
		store:  repository.NewMemoryCartStore(),
	}
}

func (f *fixture) cart() *CartService {
	return NewCartService(f.store, f.feed, DefaultTaxRate)
}

func (f *fixture) status() *StatusService {
	return NewStatusService(f.api, f.book, f.events, f.feed)
}

func (f *fixture) lastMessage(t *testing.T) string {
	t.Helper()
	n, ok := f.feed.Latest()
	require.True(t, ok, "expected a notification")
	return n.Message
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func line(itemID, productID, name, price string, qty int) models.OrderLine {
	return models.OrderLine{
		OrderItemID: models.ID(itemID),
		ProductID:   models.ID(productID),
		Name:        name,
		UnitPrice:   dec(price),
		Quantity:    qty,
	}
}

func order(id string, status models.OrderStatus, lines ...models.OrderLine) models.Order {
	table := models.ID("4")
	o := models.Order{
		ID:       models.ID(id),
		Status:   status,
		TableID:  &table,
		PlacedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	return o.WithItems(lines)
}

type fakeJournal struct {
	mu      sync.Mutex
	records []repository.PaymentRecord
	err     error
}

func (j *fakeJournal) RecordPayment(ctx context.Context, rec repository.PaymentRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return j.err
}

func (j *fakeJournal) DailySummary(ctx context.Context, day time.Time) (*repository.DailySummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := &repository.DailySummary{Date: day.Format("2006-01-02"), Cash: decimal.Zero, Card: decimal.Zero, Total: decimal.Zero}
	for _, r := range j.records {
		s.Payments++
		s.Cash = s.Cash.Add(r.Cash)
		s.Card = s.Card.Add(r.Card)
		s.Total = s.Total.Add(r.Total)
	}
	return s, nil
}
