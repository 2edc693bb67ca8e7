package category

import (
	"context"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
}
