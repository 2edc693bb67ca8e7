package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/metrics"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	products   productService
	carts      cartService
	orders     orderService
	categories categoryService
	currency   currencyService
	metrics    *metrics.Metrics
	logger     *log.Logger
}

type cartResponse struct {
	SessionID string            `json:"session_id"`
	Items     []domain.CartLine `json:"items"`
}

func (h *handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Odyssey Finds API"})
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), domain.ProductFilter{
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handlers) getProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Product not found"})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handlers) listCategories(c *gin.Context) {
	list, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handlers) getCart(c *gin.Context) {
	sessionID := c.Param("sessionId")
	lines, err := h.carts.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	c.JSON(http.StatusOK, cartResponse{SessionID: sessionID, Items: lines})
}

func (h *handlers) addToCart(c *gin.Context) {
	var item domain.CartItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := h.carts.Add(c.Request.Context(), c.Param("sessionId"), item); err != nil {
		h.writeError(c, err)
		return
	}
	h.metrics.CartMutations.WithLabelValues("add").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart"})
}

func (h *handlers) replaceCart(c *gin.Context) {
	var items []domain.CartItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := h.carts.Replace(c.Request.Context(), c.Param("sessionId"), items); err != nil {
		h.writeError(c, err)
		return
	}
	h.metrics.CartMutations.WithLabelValues("replace").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), c.Param("sessionId")); err != nil {
		h.writeError(c, err)
		return
	}
	h.metrics.CartMutations.WithLabelValues("clear").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *handlers) createOrder(c *gin.Context) {
	var in domain.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	order, err := h.orders.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.metrics.OrdersCreated.Inc()
	c.JSON(http.StatusOK, order)
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *handlers) currencyRates(c *gin.Context) {
	c.JSON(http.StatusOK, h.currency.Rates(c.Request.Context()))
}

func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	default:
		h.logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
