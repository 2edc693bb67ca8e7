package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/events"
	orderrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/order"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// cartInvalidator drops cached cart state once the order has emptied the cart.
type cartInvalidator interface {
	Invalidate(ctx context.Context, sessionID string)
}

type Service struct {
	repo      orderrepo.Repository
	carts     cartInvalidator
	publisher events.Publisher
	logger    *log.Logger
}

func New(repo orderrepo.Repository, carts cartInvalidator, publisher events.Publisher, logger *log.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, carts: carts, publisher: publisher, logger: logger}
}

// Create persists the order; the session's cart is emptied as part of it.
// Event publication failures are logged and do not fail the order.
func (s *Service) Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	if s.carts != nil {
		s.carts.Invalidate(ctx, in.SessionID)
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Printf("order service: publish order_id=%s error=%v", order.ID, err)
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

func normalize(in domain.OrderInput) (domain.OrderInput, error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)

	switch {
	case in.SessionID == "":
		return in, fmt.Errorf("%w: session_id required", domain.ErrInvalidInput)
	case len(in.Items) == 0:
		return in, fmt.Errorf("%w: order has no items", domain.ErrInvalidInput)
	case in.Currency == "":
		return in, fmt.Errorf("%w: currency required", domain.ErrInvalidInput)
	case in.CustomerName == "" || in.ShippingAddress == "":
		return in, fmt.Errorf("%w: customer name and shipping address required", domain.ErrInvalidInput)
	case in.Total < 0 || math.IsNaN(in.Total) || math.IsInf(in.Total, 0):
		return in, fmt.Errorf("%w: invalid total", domain.ErrInvalidInput)
	}
	if err := validate.Var(in.CustomerEmail, "required,email"); err != nil {
		return in, fmt.Errorf("%w: invalid customer_email", domain.ErrInvalidInput)
	}
	for _, item := range in.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity < 1 {
			return in, fmt.Errorf("%w: invalid order item", domain.ErrInvalidInput)
		}
	}
	return in, nil
}
