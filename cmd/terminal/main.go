package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/notifications"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/server"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/service"
)

func main() {
	cfg := config.Load()

	logging.SetLevel(cfg.LogLevel)
	logger := logging.NewLoggerV2("pos-terminal")

	logging.Infof("Starting pos-terminal %s on port %d", cfg.POS.TerminalID, cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := clients.NewRestaurantClient(cfg.RestaurantAPI, logger)
	feed := notifications.NewFeed(cfg.POS.NotificationBuffer)

	book := repository.NewOrderBook()
	unsubscribe := book.Subscribe(func(repository.Change) {
		metrics.ObserveOrders(book.List())
	})
	defer unsubscribe()

	var (
		cartStore   repository.CartStore = repository.NewMemoryCartStore()
		redisClient *redis.Client
	)
	if cfg.Features.EnableCartPersistence {
		redisClient = repository.NewRedisClient(cfg.Redis)
		defer redisClient.Close()
		cartStore = repository.NewRedisCartStore(redisClient, cfg.POS.TerminalID, cfg.Redis.TTL)
	}

	var (
		journal repository.PaymentJournal
		db      *sql.DB
	)
	if cfg.Features.EnableJournal {
		var err error
		db, err = repository.OpenDB(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
		}
		defer db.Close()

		if err := repository.RunMigrations(db, logger); err != nil {
			logger.Fatal("Failed to migrate journal", logging.Fields{"error": err.Error()})
		}
		journal = repository.NewPostgresJournal(db, logger)
	}

	var publisher service.EventPublisher = events.NoopPublisher{}
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, cfg.POS.TerminalID, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	cart := service.NewCartService(cartStore, feed, cfg.POS.TaxRate)
	if err := cart.Restore(ctx); err != nil {
		logger.Warn("Failed to restore cart", logging.Fields{"error": err.Error()})
	}

	status := service.NewStatusService(api, book, publisher, feed)
	checkout := service.NewCheckoutService(api, cart, book, publisher, feed, models.ID(cfg.POS.OperatorID))
	orders := service.NewOrderService(api, book, feed)
	reconciler := service.NewReconciler(api, book, publisher, feed)
	payments := service.NewPaymentService(api, book, status, journal, publisher, feed, cfg.POS.TerminalID)

	if _, err := orders.Refresh(ctx, service.FilterAll); err != nil {
		logger.Warn("Initial order refresh failed", logging.Fields{"error": err.Error()})
	}

	h := handlers.NewHandlers(cart, checkout, orders, status, reconciler, payments, feed, cfg)
	if redisClient != nil {
		h.AddReadinessCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if db != nil {
		h.AddReadinessCheck("postgres", db.PingContext)
	}

	var consumer *events.StatusConsumer
	if cfg.Features.EnableStatusSync {
		consumer = events.NewStatusConsumer(cfg.Kafka, cfg.POS.TerminalID, status, logger)
		go func() {
			if err := consumer.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("Status consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                    cfg.Server.Port,
			"terminal_id":             cfg.POS.TerminalID,
			"restaurant_api":          cfg.RestaurantAPI.BaseURL,
			"enable_cart_persistence": cfg.Features.EnableCartPersistence,
			"enable_order_events":     cfg.Features.EnableOrderEvents,
			"enable_journal":          cfg.Features.EnableJournal,
			"enable_status_sync":      cfg.Features.EnableStatusSync,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if consumer != nil {
		consumer.Stop()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}
