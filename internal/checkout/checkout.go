// Package checkout turns the session cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/currency"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ErrEmptyCart means there is nothing to order; the shopper belongs back on
// the cart view.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// ShippingDetails is the checkout form.
type ShippingDetails struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Address string `validate:"required"`
}

type Cart interface {
	SessionID() string
	Lines() []domain.CartLine
	Total() float64
	Clear(ctx context.Context) error
	Load(ctx context.Context) error
}

type Display interface {
	Currency() string
	Convert(amount float64) string
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error)
}

type Checkout struct {
	orders   OrderCreator
	cart     Cart
	display  Display
	validate *validator.Validate
	logger   *log.Logger
}

func New(orders OrderCreator, cart Cart, display Display, logger *log.Logger) *Checkout {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Checkout{
		orders:   orders,
		cart:     cart,
		display:  display,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// PlaceOrder submits the cart in the display currency. The cart is emptied
// only after the backend accepted the order.
func (c *Checkout) PlaceOrder(ctx context.Context, details ShippingDetails) (*domain.Order, error) {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	details = ShippingDetails{
		Name:    strings.TrimSpace(details.Name),
		Email:   strings.TrimSpace(details.Email),
		Address: strings.TrimSpace(details.Address),
	}
	if err := c.validate.Struct(details); err != nil {
		return nil, describe(err)
	}

	in, err := c.buildInput(lines, details)
	if err != nil {
		return nil, err
	}

	order, err := c.orders.CreateOrder(ctx, in)
	if err != nil {
		c.logger.Printf("checkout: create order session_id=%s error=%v", in.SessionID, err)
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := c.cart.Clear(ctx); err != nil {
		// The backend already emptied the cart with the order; a reload
		// picks that up.
		c.logger.Printf("checkout: clear after order order_id=%s error=%v", order.ID, err)
		if err := c.cart.Load(ctx); err != nil {
			c.logger.Printf("checkout: reload after order order_id=%s error=%v", order.ID, err)
		}
	}
	return order, nil
}

func (c *Checkout) buildInput(lines []domain.CartLine, details ShippingDetails) (domain.OrderInput, error) {
	items := make([]domain.CartItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.Item())
	}
	total, err := currency.ParseAmount(c.display.Convert(c.cart.Total()))
	if err != nil {
		return domain.OrderInput{}, err
	}
	return domain.OrderInput{
		SessionID:       c.cart.SessionID(),
		Items:           items,
		Total:           total,
		Currency:        c.display.Currency(),
		CustomerName:    details.Name,
		CustomerEmail:   details.Email,
		ShippingAddress: details.Address,
	}, nil
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("shipping details: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("shipping details: invalid %s: %w", strings.Join(fields, ", "), domain.ErrInvalidInput)
}
