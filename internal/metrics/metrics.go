// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

const namespace = "pos_terminal"

var (
	CartOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_operations_total",
		Help:      "Cart mutations by operation.",
	}, []string{"operation"})

	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_submitted_total",
		Help:      "Order submissions by result.",
	}, []string{"result"})

	QuantitySaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quantity_saves_total",
		Help:      "Edit session saves by result.",
	}, []string{"result"})

	PaymentsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_completed_total",
		Help:      "Payment completions by result.",
	}, []string{"result"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Order status transitions by target status and result.",
	}, []string{"target", "result"})

	OrdersHeld = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_held",
		Help:      "Orders mirrored by the terminal, by status.",
	}, []string{"status"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "restaurant_api_request_duration_seconds",
		Help:      "Latency of calls to the restaurant API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of terminal API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Result renders an error as a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveOrders resets the orders_held gauge from a snapshot of the order book.
func ObserveOrders(orders []models.Order) {
	counts := make(map[models.OrderStatus]int, len(models.OrderStatuses))
	for _, o := range orders {
		counts[o.Status]++
	}
	for _, status := range models.OrderStatuses {
		OrdersHeld.WithLabelValues(status.String()).Set(float64(counts[status]))
	}
}
