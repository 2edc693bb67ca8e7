package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the storefront REST API rooted at <baseURL>/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func New(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api",
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Condition != "" {
		q.Set("condition", filter.Condition)
	}
	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct maps a 404 to domain.ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var list []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetCart(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, cartPath(sessionID), nil, &cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (c *Client) AddToCart(ctx context.Context, sessionID string, item domain.CartItem) error {
	return c.do(ctx, http.MethodPost, cartPath(sessionID), item, nil)
}

func (c *Client) ReplaceCart(ctx context.Context, sessionID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	return c.do(ctx, http.MethodPut, cartPath(sessionID), items, nil)
}

func (c *Client) ClearCart(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, cartPath(sessionID), nil, nil)
}

func (c *Client) CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Rates(ctx context.Context) (map[string]float64, error) {
	var rates map[string]float64
	if err := c.do(ctx, http.MethodGet, "/currency/rates", nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func cartPath(sessionID string) string {
	return "/cart/" + url.PathEscape(sessionID)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("client: %s %s error=%v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode, Message: detail(resp.Body)}
		c.logger.Printf("client: %s %s status=%d detail=%q", method, path, se.StatusCode, se.Message)
		return se
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// detail extracts the {"detail": ...} message of an error body, falling back
// to the raw text.
func detail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Detail != nil {
		if s, ok := body.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(body.Detail); err == nil {
			return string(b)
		}
	}
	return strings.TrimSpace(string(raw))
}
