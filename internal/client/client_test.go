package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client(), nil)
}

func TestListProductsSendsFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "sneakers", r.URL.Query().Get("category"))
		assert.Equal(t, "", r.URL.Query().Get("condition"))
		_ = json.NewEncoder(w).Encode([]domain.Product{{ID: "p1", Price: 100}})
	})

	products, err := c.ListProducts(context.Background(), domain.ProductFilter{Category: "sneakers"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestListCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/categories", r.URL.Path)
		_, _ = w.Write([]byte(`[{"name":"phones","products":4,"in_stock":3}]`))
	})

	list, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{Name: "phones", Products: 4, InStock: 3}}, list)
}

func TestGetProductNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Product not found"}`))
	})

	_, err := c.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCartRoundTrip(t *testing.T) {
	var gotMethod, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart/session_1_x", r.URL.Path)
		gotMethod = r.Method
		if r.Body != nil {
			var raw json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&raw)
			gotBody = string(raw)
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"session_id":"session_1_x","items":[{"product_id":"p1","quantity":2,"size":"9","product":{"id":"p1","price":100}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})
	ctx := context.Background()

	lines, err := c.GetCart(ctx, "session_1_x")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "9", *lines[0].Size)
	assert.Equal(t, 100.0, lines[0].Product.Price)

	require.NoError(t, c.AddToCart(ctx, "session_1_x", domain.CartItem{ProductID: "p1", Quantity: 1}))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.JSONEq(t, `{"product_id":"p1","quantity":1,"size":null}`, gotBody)

	require.NoError(t, c.ReplaceCart(ctx, "session_1_x", nil))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.JSONEq(t, `[]`, gotBody)

	require.NoError(t, c.ClearCart(ctx, "session_1_x"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestStatusErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"insufficient stock"}`))
	})

	err := c.AddToCart(context.Background(), "s", domain.CartItem{ProductID: "p1", Quantity: 99})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "insufficient stock", se.Message)
}

func TestCreateOrderAndRates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders":
			var in domain.OrderInput
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(domain.Order{ID: "o1", SessionID: in.SessionID, Total: in.Total, Status: "pending"})
		case "/api/currency/rates":
			_, _ = w.Write([]byte(`{"USD":1,"EUR":0.92}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	order, err := c.CreateOrder(ctx, domain.OrderInput{SessionID: "s", Total: 230})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, 230.0, order.Total)

	rates, err := c.Rates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.92, rates["EUR"])
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New(srv.URL, nil, nil)

	_, err := c.Rates(context.Background())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}
