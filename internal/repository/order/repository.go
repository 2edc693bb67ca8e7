package order

import (
	"context"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

type Repository interface {
	// Create stores the order and deletes the session's cart in one transaction.
	Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
