package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	apperrors "github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/service"
)

type testEnv struct {
	h    *Handlers
	api  *clients.MockRestaurantClient
	book *repository.OrderBook
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	api := clients.NewMockRestaurantClient()
	book := repository.NewOrderBook()
	pub := events.NewMockEventPublisher()
	feed := notifications.NewFeed(20)

	cart := service.NewCartService(repository.NewMemoryCartStore(), feed, service.DefaultTaxRate)
	status := service.NewStatusService(api, book, pub, feed)
	h := NewHandlers(
		cart,
		service.NewCheckoutService(api, cart, book, pub, feed, "2"),
		service.NewOrderService(api, book, feed),
		status,
		service.NewReconciler(api, book, pub, feed),
		service.NewPaymentService(api, book, status, nil, pub, feed, "terminal-1"),
		feed,
		&config.Config{POS: config.POSConfig{TerminalID: "terminal-1"}},
	)
	return &testEnv{h: h, api: api, book: book}
}

func (e *testEnv) seedOrder(id string, status models.OrderStatus) {
	o := models.Order{ID: models.ID(id), Status: status}
	e.book.Upsert(o.WithItems([]models.OrderLine{
		{OrderItemID: models.ID(id + "1"), ProductID: "1", Name: "Steak", UnitPrice: decimal.NewFromInt(30), Quantity: 1},
		{OrderItemID: models.ID(id + "2"), ProductID: "2", Name: "Wine", UnitPrice: decimal.RequireFromString("7.50"), Quantity: 2},
	}))
}

func perform(handler gin.HandlerFunc, method, path string, body interface{}, params ...gin.Param) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	handler(c)
	c.Writer.WriteHeaderNow()
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}
	w := perform(h.Health, http.MethodGet, "/health", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	resp := decode(t, w)
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
	if resp["service"] != "pos-terminal" {
		t.Errorf("Expected service 'pos-terminal', got %v", resp["service"])
	}
}

func TestLive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}
	w := perform(h.Live, http.MethodGet, "/live", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestReady(t *testing.T) {
	env := newTestEnv()

	w := perform(env.h.Ready, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env.h.AddReadinessCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })
	w = perform(env.h.Ready, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decode(t, w)
	checks, ok := resp["checks"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "connection refused", checks["redis"])
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.NewValidationError("cart", "Cart is empty!"), http.StatusBadRequest},
		{"not found", fmt.Errorf("order 9: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"illegal transition", fmt.Errorf("x: %w", service.ErrIllegalTransition), http.StatusConflict},
		{"no session", service.ErrNoActiveSession, http.StatusConflict},
		{"split mismatch", service.ErrSplitMismatch, http.StatusConflict},
		{"payment in progress", service.ErrPaymentInProgress, http.StatusConflict},
		{"missing identity", fmt.Errorf("line 0: %w", service.ErrMissingItemIdentity), http.StatusUnprocessableEntity},
		{"upstream", &apperrors.APIError{Op: "create order", StatusCode: 400, Body: "table occupied"}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandleError_UpstreamBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	handleError(c, fmt.Errorf("submit: %w", &apperrors.APIError{Op: "create order", StatusCode: 409, Body: "table occupied"}))

	resp := decode(t, w)
	assert.Equal(t, "table occupied", resp["body"])
	assert.Equal(t, float64(409), resp["upstreamStatus"])
}

func TestCartAndCheckoutFlow(t *testing.T) {
	env := newTestEnv()
	h := env.h

	w := perform(h.AddCartItem, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"id": 7, "name": "Burger", "price": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = perform(h.AddCartItem, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 7, "name": "Burger", "price": 10})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	totals := resp["totals"].(map[string]interface{})
	assert.Equal(t, float64(20), totals["subtotal"])
	assert.Equal(t, float64(22), totals["total"])

	w = perform(h.UpdateCartItem, http.MethodPatch, "/api/v1/cart/items/7", map[string]int{"delta": -100}, gin.Param{Key: "id", Value: "7"})
	require.Equal(t, http.StatusOK, w.Code)
	lines := decode(t, w)["lines"].([]interface{})
	assert.Equal(t, float64(1), lines[0].(map[string]interface{})["quantity"])

	w = perform(h.Checkout, http.MethodPost, "/api/v1/checkout", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select a table", decode(t, w)["error"])

	w = perform(h.Checkout, http.MethodPost, "/api/v1/checkout", map[string]interface{}{"tableId": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)
	assert.Equal(t, float64(101), order["id"])
	assert.Equal(t, float64(10), order["totalAmount"])

	w = perform(h.GetCart, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decode(t, w)["lines"])
}

func TestAddCartItem_RequiresIdentity(t *testing.T) {
	env := newTestEnv()

	w := perform(env.h.AddCartItem, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"name": "Mystery"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrders(t *testing.T) {
	env := newTestEnv()
	env.api.Orders[models.OrderStatusCompleted] = []models.RawOrder{{ID: "3", Status: "COMPLETED"}}

	w := perform(env.h.ListOrders, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = perform(env.h.ListOrders, http.MethodGet, "/api/v1/orders?status=PENDING", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderStatusEndpoints(t *testing.T) {
	env := newTestEnv()
	env.seedOrder("55", models.OrderStatusOnGoing)

	w := perform(env.h.CancelOrder, http.MethodPost, "/api/v1/orders/55/cancel", nil, gin.Param{Key: "id", Value: "55"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", decode(t, w)["status"])

	w = perform(env.h.CompleteOrder, http.MethodPost, "/api/v1/orders/55/complete", nil, gin.Param{Key: "id", Value: "55"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(env.h.CompleteOrder, http.MethodPost, "/api/v1/orders/99/complete", nil, gin.Param{Key: "id", Value: "99"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditFlow(t *testing.T) {
	env := newTestEnv()
	env.seedOrder("55", models.OrderStatusOnGoing)
	h := env.h

	w := perform(h.BeginEdit, http.MethodPost, "/api/v1/orders/55/edit", nil, gin.Param{Key: "id", Value: "55"})
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(h.SetEditQuantity, http.MethodPatch, "/api/v1/edit/lines/552", map[string]int{"quantity": 0}, gin.Param{Key: "key", Value: "552"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["lines"], 1)

	w = perform(h.SetEditQuantity, http.MethodPatch, "/api/v1/edit/lines/551", map[string]int{}, gin.Param{Key: "key", Value: "551"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(h.SaveEdit, http.MethodPost, "/api/v1/edit/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(30), decode(t, w)["totalAmount"])

	w = perform(h.GetEdit, http.MethodGet, "/api/v1/edit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentFlow(t *testing.T) {
	env := newTestEnv()
	env.seedOrder("7", models.OrderStatusOnGoing)
	h := env.h

	w := perform(h.OpenPayment, http.MethodPost, "/api/v1/orders/7/payment", nil, gin.Param{Key: "id", Value: "7"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(45), decode(t, w)["total"])

	w = perform(h.SetPaymentSplit, http.MethodPut, "/api/v1/payment/split", map[string]int{"cash": 20, "card": 20})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, false, view["canComplete"])
	assert.Equal(t, "Incorrect amount: cash + card must equal 45.00", view["label"])

	w = perform(h.CompletePayment, http.MethodPost, "/api/v1/payment/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(h.SetPaymentSplit, http.MethodPut, "/api/v1/payment/split", map[string]int{"card": 25})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["canComplete"])

	w = perform(h.CompletePayment, http.MethodPost, "/api/v1/payment/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "COMPLETED", decode(t, w)["status"])
	assert.Equal(t, []string{"payment:7", "complete:7"}, env.api.CallLog())

	w = perform(h.GetPayment, http.MethodGet, "/api/v1/payment", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChoosePaymentShortcut(t *testing.T) {
	env := newTestEnv()
	env.seedOrder("7", models.OrderStatusOnGoing)

	perform(env.h.OpenPayment, http.MethodPost, "/api/v1/orders/7/payment", nil, gin.Param{Key: "id", Value: "7"})

	w := perform(env.h.ChoosePaymentShortcut, http.MethodPost, "/api/v1/payment/shortcut", map[string]string{"shortcut": "SPLIT"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, 22.5, view["cash"])
	assert.Equal(t, 22.5, view["card"])

	w = perform(env.h.ChoosePaymentShortcut, http.MethodPost, "/api/v1/payment/shortcut", map[string]string{"shortcut": "IOU"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(env.h.ClosePayment, http.MethodDelete, "/api/v1/payment", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReceiptEndpoints(t *testing.T) {
	env := newTestEnv()
	env.seedOrder("7", models.OrderStatusOnGoing)

	w := perform(env.h.GetReceipt, http.MethodGet, "/api/v1/orders/7/receipt", nil, gin.Param{Key: "id", Value: "7"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER #7")

	w = perform(env.h.GetReceiptQR, http.MethodGet, "/api/v1/orders/7/receipt.png", nil, gin.Param{Key: "id", Value: "7"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestListNotifications(t *testing.T) {
	env := newTestEnv()
	env.h.feed.Notify(notifications.LevelInfo, "first")
	env.h.feed.Notify(notifications.LevelInfo, "second")

	w := perform(env.h.ListNotifications, http.MethodGet, "/api/v1/notifications?since=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["notifications"], 1)

	w = perform(env.h.ListNotifications, http.MethodGet, "/api/v1/notifications?since=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJournalSummary_Disabled(t *testing.T) {
	env := newTestEnv()

	w := perform(env.h.JournalSummary, http.MethodGet, "/api/v1/journal/summary?date="+time.Now().Format("2006-01-02"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(env.h.JournalSummary, http.MethodGet, "/api/v1/journal/summary?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
