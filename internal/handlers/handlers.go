package handlers

import (
	"context"
	"sync"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/service"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the terminal service.
type Handlers struct {
	cart       *service.CartService
	checkout   *service.CheckoutService
	orders     *service.OrderService
	status     *service.StatusService
	reconciler *service.Reconciler
	payments   *service.PaymentService
	feed       *notifications.Feed
	config     *config.Config
	logger     *logging.LoggerV2

	checksMu sync.RWMutex
	checks   map[string]ReadinessCheck
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	cart *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	status *service.StatusService,
	reconciler *service.Reconciler,
	payments *service.PaymentService,
	feed *notifications.Feed,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		cart:       cart,
		checkout:   checkout,
		orders:     orders,
		status:     status,
		reconciler: reconciler,
		payments:   payments,
		feed:       feed,
		config:     cfg,
		logger:     logging.NewLoggerV2("handlers"),
		checks:     make(map[string]ReadinessCheck),
	}
}

// AddReadinessCheck registers a dependency probed by GET /ready.
func (h *Handlers) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checksMu.Lock()
	defer h.checksMu.Unlock()
	h.checks[name] = check
}
