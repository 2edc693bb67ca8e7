package category

import (
	"context"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/category"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

// List returns every category with at least one product; never nil.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Category{}
	}
	return list, nil
}
