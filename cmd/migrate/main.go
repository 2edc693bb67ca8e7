package main

import (
	"context"
	"log"
	"os"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/config"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/db"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/migrate"
)

func main() {
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Printf("migrations applied version=%d", version)
}
