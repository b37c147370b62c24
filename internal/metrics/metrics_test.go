package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

func TestResult(t *testing.T) {
	if got := Result(nil); got != "success" {
		t.Errorf("expected success, got %s", got)
	}
	if got := Result(errors.New("boom")); got != "error" {
		t.Errorf("expected error, got %s", got)
	}
}

func TestObserveOrders(t *testing.T) {
	ObserveOrders([]models.Order{
		{ID: "1", Status: models.OrderStatusOnGoing},
		{ID: "2", Status: models.OrderStatusOnGoing},
		{ID: "3", Status: models.OrderStatusCompleted},
	})

	if got := testutil.ToFloat64(OrdersHeld.WithLabelValues("ON GOING")); got != 2 {
		t.Errorf("expected 2 ongoing orders, got %v", got)
	}
	if got := testutil.ToFloat64(OrdersHeld.WithLabelValues("CANCELLED")); got != 0 {
		t.Errorf("expected 0 cancelled orders, got %v", got)
	}

	ObserveOrders(nil)
	if got := testutil.ToFloat64(OrdersHeld.WithLabelValues("ON GOING")); got != 0 {
		t.Errorf("expected gauge reset, got %v", got)
	}
}
