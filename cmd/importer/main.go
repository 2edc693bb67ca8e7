package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/cache"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/config"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/db"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/importer"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/product"
	productsvc "github.com/KatlegoSeiphemo/odysseyfinds/internal/service/product"
	"github.com/redis/go-redis/v9"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV (id,name,description,price,category,image_url,brand,condition,sizes,stock)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	var carts cache.CartCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable at %s, cached carts not invalidated: %v", cfg.RedisAddr, err)
		} else {
			carts = cache.NewRedisCache(rdb, cfg.CartCacheTTL)
		}
	}

	imp := importer.NewCSVImporter(f, productsvc.New(product.NewPostgres(pool, nil), carts))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
