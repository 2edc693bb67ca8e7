package product

import (
	"context"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

type Repository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
