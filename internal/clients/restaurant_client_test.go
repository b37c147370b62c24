package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RestaurantClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewRestaurantClient(config.ServiceConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, logging.NewLoggerV2("restaurant-client-test"))
}

func TestRestaurantClient_ListOrdersByStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/status/ON GOING", r.URL.Path)
		assert.Equal(t, "req-1", r.Header.Get(middleware.HeaderRequestID))
		w.Write([]byte(`[{"orderId": 55, "status": "ON GOING", "totalAmount": 13}]`))
	})

	ctx := middleware.WithRequestID(context.Background(), "req-1")
	orders, err := client.ListOrdersByStatus(ctx, models.OrderStatusOnGoing)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.ID("55"), orders[0].Identity())
}

func TestRestaurantClient_CreateOrder(t *testing.T) {
	var received map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 101, "status": "ON GOING", "items": [{"orderItemId": 1, "productId": 1, "quantity": 2, "price": 5}]}`))
	})

	created, err := client.CreateOrder(context.Background(), models.CreateOrderRequest{
		UserID:  "2",
		Status:  models.OrderStatusOnGoing,
		Total:   decimal.NewFromInt(10),
		TableID: "4",
		Items: []models.CreateOrderItem{
			{ProductID: "1", Name: "Fries", Quantity: 2, Price: decimal.NewFromInt(5)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, models.ID("101"), created.Identity())
	assert.Equal(t, float64(4), received["tableId"])
	assert.Equal(t, "ON GOING", received["status"])
}

func TestRestaurantClient_UpdateQuantities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/55/quantities", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `[{"orderItemId": 1, "quantity": 3}]`, string(body))
		w.Write([]byte(`{"orderId": 55, "status": "ON GOING"}`))
	})

	echo, err := client.UpdateQuantities(context.Background(), "55", []models.QuantityUpdate{
		{OrderItemID: "1", Quantity: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, models.ID("55"), echo.Identity())
}

func TestRestaurantClient_Transitions(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"id": 7, "status": "COMPLETED"}`))
	})

	_, err := client.CompleteOrder(context.Background(), "7")
	require.NoError(t, err)
	_, err = client.CancelOrder(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, []string{"/orders/7/complete", "/orders/7/cancel"}, paths)
}

func TestRestaurantClient_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	echo, err := client.CompleteOrder(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, echo.Identity().IsZero())
}

func TestRestaurantClient_RecordPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"orderId": 55, "payments": [{"method": "CASH", "amount": 20}, {"method": "CARD", "amount": 25}]}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})

	split := models.PaymentSplit{Cash: decimal.NewFromInt(20), Card: decimal.NewFromInt(25)}
	err := client.RecordPayment(context.Background(), models.PaymentRequest{OrderID: "55", Payments: split.Entries()})
	require.NoError(t, err)
}

func TestRestaurantClient_ErrorCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Table 4 is not available"))
	})

	_, err := client.AvailableTables(context.Background())
	require.Error(t, err)

	apiErr, ok := errors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Table 4 is not available", apiErr.Body)
	assert.Contains(t, err.Error(), "Table 4 is not available")
}

func TestRestaurantClient_AvailableTables(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tables/available", r.URL.Path)
		w.Write([]byte(`[{"tableId": 4, "tableNumber": 4, "capacity": 6, "available": true}]`))
	})

	tables, err := client.AvailableTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, models.ID("4"), tables[0].TableID)
	assert.True(t, tables[0].Available)
}
