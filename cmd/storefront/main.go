package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/client"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/config"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/session"
)

const usage = `usage: storefront [-currency CODE] <command> [flags] [args]

commands:
  session                                  print the session id
  products [-category C] [-condition C]    list products
  categories                               list categories
  product <id>                             show one product
  cart                                     show the cart
  add [-qty N] [-size S] <product-id>      add to cart (size defaults to the first available)
  qty [-size S] <product-id> <n>           set a line's quantity (0 removes it)
  remove [-size S] <product-id>            remove a line
  clear                                    empty the cart
  checkout -name N -email E -address A     place an order
  rates                                    show currency rates
`

// stateStore is the persisted session state; it must be closed on every exit path.
type stateStore interface {
	session.Store
	Close() error
}

var openState = func(path string) (stateStore, error) {
	return session.OpenSQLite(path)
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the process exit code so deferred cleanup runs before exit.
func realMain(args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.StorefrontFromEnv()
	if err != nil {
		logger.Printf("load config: %v", err)
		return 1
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	currencyCode := fs.String("currency", cfg.Currency, "display currency (USD, EUR, GBP, JPY, ZAR)")
	verbose := fs.Bool("v", false, "log backend traffic to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openState(cfg.StatePath)
	if err != nil {
		logger.Printf("open state: %v", err)
		return 1
	}
	defer store.Close()

	appLogger := logger
	if !*verbose {
		appLogger = nil
	}
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	a, err := newApp(ctx, client.New(cfg.BackendURL, httpClient, appLogger), store, *currencyCode, stdout, appLogger)
	if err != nil {
		logger.Printf("start: %v", err)
		return 1
	}

	if err := a.run(ctx, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
