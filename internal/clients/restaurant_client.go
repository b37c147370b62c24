package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// maxErrorBody caps how much of an error response is kept for the caller.
const maxErrorBody = 4096

// RestaurantClient talks to the restaurant REST API.
type RestaurantClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.LoggerV2
}

// NewRestaurantClient creates a client for the restaurant API.
func NewRestaurantClient(cfg config.ServiceConfig, logger *logging.LoggerV2) *RestaurantClient {
	return &RestaurantClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// ListOrdersByStatus fetches every order in the given status.
func (c *RestaurantClient) ListOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.RawOrder, error) {
	c.logger.Debug("Listing orders", logging.Fields{"status": status})

	var orders []models.RawOrder
	path := "/orders/status/" + url.PathEscape(status.String())
	if err := c.do(ctx, "list_orders", http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.RawOrder{}
	}
	return orders, nil
}

// CreateOrder posts a new order and returns the server's copy.
func (c *RestaurantClient) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.RawOrder, error) {
	c.logger.Debug("Creating order", logging.Fields{
		"table_id":   req.TableID,
		"item_count": len(req.Items),
		"total":      req.Total.String(),
	})

	var created models.RawOrder
	if err := c.do(ctx, "create_order", http.MethodPost, "/orders", req, &created); err != nil {
		return nil, err
	}

	c.logger.Info("Order created", logging.Fields{"order_id": created.Identity()})
	return &created, nil
}

// UpdateQuantities sends the edited quantities of an order. The echo may be partial or empty.
func (c *RestaurantClient) UpdateQuantities(ctx context.Context, orderID models.ID, updates []models.QuantityUpdate) (*models.RawOrder, error) {
	c.logger.Debug("Updating order quantities", logging.Fields{
		"order_id":   orderID,
		"line_count": len(updates),
	})

	var echo models.RawOrder
	path := "/orders/" + url.PathEscape(orderID.String()) + "/quantities"
	if err := c.do(ctx, "update_quantities", http.MethodPut, path, updates, &echo); err != nil {
		return nil, err
	}
	return &echo, nil
}

// CompleteOrder marks an order COMPLETED.
func (c *RestaurantClient) CompleteOrder(ctx context.Context, orderID models.ID) (*models.RawOrder, error) {
	return c.transition(ctx, "complete_order", orderID, "complete")
}

// CancelOrder marks an order CANCELLED.
func (c *RestaurantClient) CancelOrder(ctx context.Context, orderID models.ID) (*models.RawOrder, error) {
	return c.transition(ctx, "cancel_order", orderID, "cancel")
}

func (c *RestaurantClient) transition(ctx context.Context, op string, orderID models.ID, action string) (*models.RawOrder, error) {
	c.logger.Debug("Transitioning order", logging.Fields{
		"order_id": orderID,
		"action":   action,
	})

	var updated models.RawOrder
	path := "/orders/" + url.PathEscape(orderID.String()) + "/" + action
	if err := c.do(ctx, op, http.MethodPost, path, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RecordPayment posts the tender lines of a completed payment.
func (c *RestaurantClient) RecordPayment(ctx context.Context, req models.PaymentRequest) error {
	c.logger.Debug("Recording payment", logging.Fields{
		"order_id": req.OrderID,
		"entries":  len(req.Payments),
	})

	if err := c.do(ctx, "record_payment", http.MethodPost, "/payments", req, nil); err != nil {
		return err
	}

	c.logger.Info("Payment recorded", logging.Fields{"order_id": req.OrderID})
	return nil
}

// AvailableTables lists tables that can take a new order.
func (c *RestaurantClient) AvailableTables(ctx context.Context) ([]models.RawTable, error) {
	var tables []models.RawTable
	if err := c.do(ctx, "available_tables", http.MethodGet, "/tables/available", nil, &tables); err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []models.RawTable{}
	}
	return tables, nil
}

// do performs a JSON request. Non-2xx answers become *errors.APIError carrying the body
// text; an empty 2xx body leaves out untouched.
func (c *RestaurantClient) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	c.setHeaders(ctx, httpReq)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(op, "transport_error").Observe(time.Since(start).Seconds())
		c.logger.Error("Restaurant API request failed", logging.Fields{
			"operation": op,
			"path":      path,
			"error":     err.Error(),
		})
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestDuration.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Restaurant API returned error", logging.Fields{
			"operation":   op,
			"path":        path,
			"status_code": resp.StatusCode,
		})
		return &errors.APIError{Op: op, StatusCode: resp.StatusCode, Body: string(text)}
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *RestaurantClient) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if requestID := middleware.RequestIDFrom(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}
}
