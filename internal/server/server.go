package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/middleware"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	http     *http.Server
	logger   *logging.LoggerV2
}

// New builds the terminal's HTTP server.
func New(h *handlers.Handlers, cfg *config.Config) *Server {
	router := gin.New()
	logger := logging.NewLoggerV2("http")

	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger,
	}

	s.setupRoutes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.Health)
	s.router.GET("/ready", h.Ready)
	s.router.GET("/live", h.Live)
	s.router.GET("/version", h.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items", h.AddCartItem)
		v1.PATCH("/cart/items/:id", h.UpdateCartItem)
		v1.DELETE("/cart/items/:id", h.RemoveCartItem)

		v1.GET("/tables", h.ListTables)
		v1.POST("/checkout", h.Checkout)

		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/:id", h.GetOrder)
		v1.POST("/orders/:id/complete", h.CompleteOrder)
		v1.POST("/orders/:id/cancel", h.CancelOrder)
		v1.GET("/orders/:id/receipt", h.GetReceipt)
		v1.GET("/orders/:id/receipt.png", h.GetReceiptQR)

		v1.POST("/orders/:id/edit", h.BeginEdit)
		v1.GET("/edit", h.GetEdit)
		v1.PATCH("/edit/lines/:key", h.SetEditQuantity)
		v1.DELETE("/edit/lines/:key", h.RemoveEditLine)
		v1.POST("/edit/save", h.SaveEdit)
		v1.POST("/edit/cancel", h.CancelEdit)

		v1.POST("/orders/:id/payment", h.OpenPayment)
		v1.GET("/payment", h.GetPayment)
		v1.POST("/payment/shortcut", h.ChoosePaymentShortcut)
		v1.PUT("/payment/split", h.SetPaymentSplit)
		v1.POST("/payment/complete", h.CompletePayment)
		v1.DELETE("/payment", h.ClosePayment)

		v1.GET("/notifications", h.ListNotifications)
		v1.GET("/journal/summary", h.JournalSummary)
	}
}

// Handler returns the router wrapped with CORS for the browser UI.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{middleware.HeaderRequestID},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.http.Addr})
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
