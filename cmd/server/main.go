package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/tiyeni/storefront/internal/adapter/captcha"
	"github.com/tiyeni/storefront/internal/adapter/handler"
	"github.com/tiyeni/storefront/internal/adapter/mq"
	"github.com/tiyeni/storefront/internal/adapter/payment"
	"github.com/tiyeni/storefront/internal/adapter/storage"
	"github.com/tiyeni/storefront/internal/auth"
	"github.com/tiyeni/storefront/internal/config"
	"github.com/tiyeni/storefront/internal/core/domain"
	"github.com/tiyeni/storefront/internal/core/service"
	"github.com/tiyeni/storefront/internal/port"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Error("open mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Error("ping mysql", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("ping redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	// RabbitMQ is optional; events are skipped when it is down.
	var events port.EventPublisher
	publisher, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	if err != nil {
		logger.Warn("rabbitmq unavailable, events disabled", "error", err)
	} else {
		events = publisher
		defer publisher.Close()
		logger.Info("connected to rabbitmq", "queue", cfg.RabbitMQQueue)
	}

	if err := syncStock(ctx, mysqlAdapter, redisAdapter); err != nil {
		logger.Error("sync stock to cache", "error", err)
		os.Exit(1)
	}

	gateway := payment.NewPayChanguClient(cfg.PayChanguBaseURL, cfg.PayChanguSecretKey)
	verifier := captcha.NewRecaptchaVerifier(cfg.RecaptchaVerifyURL, cfg.RecaptchaSecret)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	// Services
	catalogSvc := service.NewCatalogService(mysqlAdapter, redisAdapter)
	cartSvc := service.NewCartService(redisAdapter, mysqlAdapter)
	promoSvc := service.NewPromotionService(mysqlAdapter)
	checkoutSvc := service.NewCheckoutService(
		mysqlAdapter, mysqlAdapter, redisAdapter, redisAdapter, gateway, mysqlAdapter,
		cfg.TaxBps, cfg.FeeBps, cfg.Currency, cfg.QueueSize,
	)
	orderSvc := service.NewOrderService(mysqlAdapter, mysqlAdapter, redisAdapter, events)
	bookingSvc := service.NewBookingService(
		mysqlAdapter, mysqlAdapter, mysqlAdapter, gateway, mysqlAdapter, events,
		cfg.TaxBps, cfg.FeeBps, cfg.Currency,
	)
	reviewSvc := service.NewReviewService(mysqlAdapter, mysqlAdapter, mysqlAdapter, mysqlAdapter, verifier)
	ledgerSvc := service.NewLedgerService(mysqlAdapter, mysqlAdapter, mysqlAdapter)
	paymentSvc := service.NewPaymentService(gateway, mysqlAdapter, mysqlAdapter, mysqlAdapter, ledgerSvc, events)
	analyticsSvc := service.NewAnalyticsService(mysqlAdapter, mysqlAdapter)
	userSvc := service.NewUserService(mysqlAdapter)

	// Worker pool persisting checkout orders
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(logger, id, checkoutSvc.OrderQueue(), mysqlAdapter, redisAdapter)
		}(i)
	}
	logger.Info("started workers", "count", cfg.WorkerCount)

	// HTTP server
	router := handler.NewRouter(
		issuer,
		handler.NewAuthHandler(userSvc, issuer),
		handler.NewCatalogHandler(catalogSvc, reviewSvc, promoSvc),
		handler.NewCartHandler(cartSvc),
		handler.NewCheckoutHandler(checkoutSvc, paymentSvc),
		handler.NewAccountHandler(orderSvc, bookingSvc, reviewSvc),
		handler.NewAdminHandler(catalogSvc, promoSvc, orderSvc, bookingSvc, reviewSvc, analyticsSvc, ledgerSvc),
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("http server stopped")

	checkoutSvc.Close()
	wg.Wait()
	logger.Info("workers stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

// syncStock seeds the cached stock counters from the database on boot.
func syncStock(ctx context.Context, items port.ItemRepository, cache port.CacheRepository) error {
	products, err := items.ListItems(ctx, port.ItemFilter{Kind: domain.ItemKindProduct})
	if err != nil {
		return err
	}
	for _, p := range products {
		inv, err := items.GetInventory(ctx, p.ID)
		if err != nil {
			return err
		}
		if inv == nil {
			continue
		}
		if err := cache.SetStock(ctx, p.ID, inv.Stock); err != nil {
			return err
		}
	}
	return nil
}

func workerLoop(logger *slog.Logger, id int, queue <-chan domain.Order, db port.OrderRepository, cache port.CacheRepository) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := db.CreateOrder(ctx, order); err != nil {
			logger.Error("persist order failed", "worker", id, "order", order.ID, "error", err)

			// Rollback: restore cached stock for every line.
			for _, l := range order.Lines {
				if rollbackErr := cache.IncrementStock(ctx, l.ItemID, l.Quantity); rollbackErr != nil {
					logger.Error("stock rollback failed", "worker", id, "order", order.ID, "item", l.ItemID, "error", rollbackErr)
				}
			}
		} else {
			logger.Info("order persisted", "worker", id, "order", order.ID)
		}

		cancel()
	}
}
