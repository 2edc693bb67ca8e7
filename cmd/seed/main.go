package main

import (
	"context"
	"log"
	"os"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/cache"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/config"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/db"
	productrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/product"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/seed"
	productsvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/product"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	// Cached carts embed product snapshots; drop them when the catalogue changes.
	var carts cache.CartCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable at %s, cached carts not invalidated: %v", cfg.RedisAddr, err)
		} else {
			carts = cache.NewRedisCache(rdb, cfg.CartCacheTTL)
		}
	}

	n, err := seed.Apply(ctx, productsvc.New(productrepo.NewPostgres(pool, logger), carts))
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied products=%d", n)
}
