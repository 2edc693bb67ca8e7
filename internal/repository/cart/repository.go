package cart

import (
	"context"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

// Repository persists one cart per session id.
type Repository interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	// Quantity returns the stored quantity of the (productID, size) line, 0 if absent.
	Quantity(ctx context.Context, sessionID, productID string, size *string) (int, error)
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) error
	Replace(ctx context.Context, sessionID string, items []domain.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}
