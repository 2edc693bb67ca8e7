package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/cache"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/config"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/db"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/events"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/httpserver"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/metrics"
	cartrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/cart"
	categoryrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/category"
	orderrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/order"
	productrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/product"
	cartsvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/cart"
	categorysvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/category"
	currencysvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/currency"
	ordersvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/order"
	productsvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/product"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var cartCache cache.CartCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable at %s, cart cache disabled: %v", cfg.RedisAddr, err)
		} else {
			cartCache = cache.NewRedisCache(rdb, cfg.CartCacheTTL)
			logger.Printf("cart cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.CartCacheTTL)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrdersTopic, logger)
		logger.Printf("order events enabled topic=%s brokers=%v", cfg.OrdersTopic, cfg.KafkaBrokers)
	}
	defer publisher.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	productService := productsvc.New(productRepo, cartCache)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), productRepo, cartCache, logger)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), cartService, publisher, logger)
	currencyService := currencysvc.New(cfg.CurrencyRates)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CartSvc:     cartService,
		OrderSvc:    orderService,
		CategorySvc: categoryService,
		CurrencySvc: currencyService,
		Metrics:     metrics.New(),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
