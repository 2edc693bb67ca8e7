package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/gin-gonic/gin"
)

type stubProducts struct {
	products   []domain.Product
	lastFilter domain.ProductFilter
	err        error
}

func (s *stubProducts) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.lastFilter = filter
	return s.products, s.err
}

func (s *stubProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubCarts struct {
	lines    []domain.CartLine
	added    []domain.CartItem
	replaced []domain.CartItem
	cleared  string
	err      error
}

func (s *stubCarts) Get(_ context.Context, _ string) ([]domain.CartLine, error) {
	return s.lines, s.err
}

func (s *stubCarts) Add(_ context.Context, _ string, item domain.CartItem) error {
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, item)
	return nil
}

func (s *stubCarts) Replace(_ context.Context, _ string, items []domain.CartItem) error {
	if s.err != nil {
		return s.err
	}
	s.replaced = items
	return nil
}

func (s *stubCarts) Clear(_ context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = sessionID
	return nil
}

type stubOrders struct {
	last *domain.OrderInput
	err  error
}

func (s *stubOrders) Create(_ context.Context, in domain.OrderInput) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.last = &in
	return &domain.Order{ID: "ord-1", SessionID: in.SessionID, Items: in.Items, Total: in.Total, Currency: in.Currency, Status: domain.OrderStatusPending}, nil
}

func (s *stubOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	if id == "ord-1" {
		return &domain.Order{ID: id, Status: domain.OrderStatusPending}, nil
	}
	return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
}

type stubCategories []domain.Category

func (s stubCategories) List(context.Context) ([]domain.Category, error) { return s, nil }

type stubRates map[string]float64

func (s stubRates) Rates(context.Context) map[string]float64 { return s }

type fixture struct {
	router   *gin.Engine
	products *stubProducts
	carts    *stubCarts
	orders   *stubOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		products: &stubProducts{products: []domain.Product{
			{ID: "p1", Name: "Air Max 90", Price: 120, Category: "sneakers", Condition: "new", Sizes: []string{"8", "9"}, Stock: 5},
		}},
		carts:  &stubCarts{},
		orders: &stubOrders{},
	}
	router, err := buildRouter(log.New(io.Discard, "", 0), nil, Deps{
		ProductSvc:  f.products,
		CartSvc:     f.carts,
		OrderSvc:    f.orders,
		CategorySvc: stubCategories{{Name: "sneakers", Products: 4, InStock: 4}},
		CurrencySvc: stubRates{"USD": 1, "EUR": 0.92},
	})
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}
	f.router = router
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body.Detail
}

func TestBuildRouterRequiresServices(t *testing.T) {
	if _, err := buildRouter(log.New(io.Discard, "", 0), nil, Deps{}); err == nil {
		t.Fatalf("expected error for missing services")
	}
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz without db: expected 503, got %d", rec.Code)
	}
}

func TestRootBanner(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Odyssey Finds API") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestListProductsPassesFilter(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/products?category=sneakers&condition=new", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.products.lastFilter.Category != "sneakers" || f.products.lastFilter.Condition != "new" {
		t.Fatalf("filter not forwarded: %+v", f.products.lastFilter)
	}
	var products []domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].ImageURL != "" || products[0].Sizes[1] != "9" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestGetProductNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/products/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "Product not found" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Name != "sneakers" || list[0].Products != 4 {
		t.Fatalf("unexpected categories %+v", list)
	}
}

func TestGetCartShape(t *testing.T) {
	f := newFixture(t)
	size := "9"
	f.carts.lines = []domain.CartLine{{ProductID: "p1", Quantity: 2, Size: &size, Product: &f.products.products[0]}}

	rec := f.do(http.MethodGet, "/api/cart/session_1_abc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cart domain.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cart.SessionID != "session_1_abc" || len(cart.Items) != 1 || cart.Items[0].Product == nil {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestGetCartEmptyIsArray(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/cart/s", "")
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty items array, got %s", rec.Body.String())
	}
}

func TestAddToCart(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/cart/s", `{"product_id":"p1","quantity":1,"size":"9"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.carts.added) != 1 || f.carts.added[0].Size == nil || *f.carts.added[0].Size != "9" {
		t.Fatalf("unexpected added items %+v", f.carts.added)
	}
}

func TestAddToCartBadBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/cart/s", `{"product_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("product p9: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("quantity: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("p1: %w", domain.ErrInsufficientStock), http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		f := newFixture(t)
		f.carts.err = tc.err
		rec := f.do(http.MethodPost, "/api/cart/s", `{"product_id":"p1","quantity":1}`)
		if rec.Code != tc.want {
			t.Fatalf("err %v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
		if decodeDetail(t, rec) == "" {
			t.Fatalf("err %v: expected detail", tc.err)
		}
	}
}

func TestReplaceAndClearCart(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPut, "/api/cart/s", `[{"product_id":"p1","quantity":3,"size":null}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace: expected 200, got %d", rec.Code)
	}
	if len(f.carts.replaced) != 1 || f.carts.replaced[0].Quantity != 3 || f.carts.replaced[0].Size != nil {
		t.Fatalf("unexpected replaced items %+v", f.carts.replaced)
	}

	rec = f.do(http.MethodDelete, "/api/cart/s", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}
	if f.carts.cleared != "s" {
		t.Fatalf("expected session s cleared, got %q", f.carts.cleared)
	}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	body := `{"session_id":"s","items":[{"product_id":"p1","quantity":2,"size":"9"}],"total":220.8,"currency":"EUR",` +
		`"customer_name":"Ada","customer_email":"ada@example.com","shipping_address":"1 Main St"}`
	rec := f.do(http.MethodPost, "/api/orders", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var order domain.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ID != "ord-1" || order.Status != domain.OrderStatusPending || order.Currency != "EUR" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	body := `{"session_id":"s","items":[],"total":0,"currency":"USD","customer_name":"Ada","customer_email":"not-an-email","shipping_address":"x"}`
	rec := f.do(http.MethodPost, "/api/orders", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if f.orders.last != nil {
		t.Fatalf("service must not be called on invalid body")
	}
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(http.MethodGet, "/api/orders/ord-1", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/orders/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCurrencyRates(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/currency/rates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rates map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &rates); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rates["EUR"] != 0.92 {
		t.Fatalf("unexpected rates %+v", rates)
	}
}

func TestMetricsEndpointCountsMutations(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodDelete, "/api/cart/s", "")
	rec := f.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `odyssey_cart_mutations_total{kind="clear"} 1`) {
		t.Fatalf("expected clear mutation counted")
	}
}
