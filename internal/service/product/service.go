package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	productrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/product"
)

type Service struct {
	repo  productrepo.Repository
	carts cartInvalidator
}

// cartInvalidator drops cached carts, which embed product snapshots.
type cartInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

func New(repo productrepo.Repository, carts cartInvalidator) *Service {
	return &Service{repo: repo, carts: carts}
}

// List returns the catalogue, optionally narrowed by category and condition.
func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Condition = strings.ToLower(strings.TrimSpace(filter.Condition))
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Upsert writes the product and then invalidates cached carts so they are
// rebuilt with the new price and stock.
func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	saved, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	if s.carts != nil {
		if err := s.carts.InvalidateAll(ctx); err != nil {
			return saved, fmt.Errorf("invalidate carts: %w", err)
		}
	}
	return saved, nil
}
