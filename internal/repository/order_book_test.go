package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

func sampleOrder(id models.ID, qty int) models.Order {
	return models.Order{ID: id, Status: models.OrderStatusOnGoing}.WithItems([]models.OrderLine{
		{OrderItemID: "1", Name: "Burger", UnitPrice: decimal.NewFromInt(10), Quantity: qty},
	})
}

func TestOrderBook_UpdateIsIdentityScoped(t *testing.T) {
	book := NewOrderBook()
	book.Load([]models.Order{sampleOrder("55", 1), sampleOrder("56", 1)})

	_, err := book.Update("55", func(o models.Order) models.Order {
		return o.WithItems([]models.OrderLine{
			{OrderItemID: "1", Name: "Burger", UnitPrice: decimal.NewFromInt(10), Quantity: 3},
		})
	})
	require.NoError(t, err)

	o55, err := book.Get("55")
	require.NoError(t, err)
	o56, err := book.Get("56")
	require.NoError(t, err)

	assert.Equal(t, 3, o55.Items[0].Quantity)
	assert.True(t, o55.TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, sampleOrder("56", 1), o56)
}

func TestOrderBook_UpdateUnknown(t *testing.T) {
	book := NewOrderBook()

	_, err := book.Update("404", func(o models.Order) models.Order { return o })
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestOrderBook_ReadersGetCopies(t *testing.T) {
	book := NewOrderBook()
	book.Upsert(sampleOrder("1", 1))

	got, err := book.Get("1")
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	got.Status = models.OrderStatusCancelled

	again, err := book.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Equal(t, models.OrderStatusOnGoing, again.Status)

	list := book.List()
	list[0].Items[0].Quantity = 42
	again, _ = book.Get("1")
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestOrderBook_UpsertReplacesByID(t *testing.T) {
	book := NewOrderBook()
	book.Upsert(sampleOrder("1", 1))
	book.Upsert(sampleOrder("2", 1))
	book.Upsert(sampleOrder("1", 4))

	list := book.List()
	require.Len(t, list, 2)
	assert.Equal(t, models.ID("1"), list[0].ID)
	assert.Equal(t, 4, list[0].Items[0].Quantity)
}

func TestOrderBook_Subscribe(t *testing.T) {
	book := NewOrderBook()

	var changes []Change
	unsubscribe := book.Subscribe(func(c Change) { changes = append(changes, c) })

	book.Upsert(sampleOrder("1", 1))
	book.Upsert(sampleOrder("1", 2))
	unsubscribe()
	book.Upsert(sampleOrder("2", 1))

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Kind: ChangeInserted, OrderID: "1"}, changes[0])
	assert.Equal(t, Change{Kind: ChangeReplaced, OrderID: "1"}, changes[1])
}
