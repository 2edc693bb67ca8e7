package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Add(ctx context.Context, sessionID string, item domain.CartItem) error
	Replace(ctx context.Context, sessionID string, items []domain.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}

type orderService interface {
	Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type currencyService interface {
	Rates(ctx context.Context) map[string]float64
}

// Deps groups the services the router dispatches to.
type Deps struct {
	ProductSvc  productService
	CartSvc     cartService
	OrderSvc    orderService
	CategorySvc categoryService
	CurrencySvc currencyService
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.CartSvc == nil || deps.OrderSvc == nil || deps.CategorySvc == nil || deps.CurrencySvc == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), deps.Metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	h := &handlers{
		products:   deps.ProductSvc,
		carts:      deps.CartSvc,
		orders:     deps.OrderSvc,
		categories: deps.CategorySvc,
		currency:   deps.CurrencySvc,
		metrics:    deps.Metrics,
		logger:     logger,
	}

	api := router.Group("/api")
	api.GET("/", h.root)
	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/categories", h.listCategories)
	api.GET("/cart/:sessionId", h.getCart)
	api.POST("/cart/:sessionId", h.addToCart)
	api.PUT("/cart/:sessionId", h.replaceCart)
	api.DELETE("/cart/:sessionId", h.clearCart)
	api.POST("/orders", h.createOrder)
	api.GET("/orders/:id", h.getOrder)
	api.GET("/currency/rates", h.currencyRates)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
