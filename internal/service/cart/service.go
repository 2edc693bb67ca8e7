package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/cache"
	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	cartrepo "github.com/KatlegoSeiphemo/odysseyfinds/internal/repository/cart"
)

// Service owns the server-side cart of every anonymous session.
type Service struct {
	repo        cartRepo
	productRepo productRepo
	cache       cache.CartCache
	logger      *log.Logger
}

type cartRepo interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Quantity(ctx context.Context, sessionID, productID string, size *string) (int, error)
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) error
	Replace(ctx context.Context, sessionID string, items []domain.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo, c cache.CartCache, logger *log.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, productRepo: productRepo, cache: c, logger: logger}
}

// Get returns the denormalized cart. A session without a cart has no lines.
func (s *Service) Get(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return nil, err
	}

	lines, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return lines, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Printf("cart service: cache get session_id=%s error=%v", sessionID, err)
	}

	// The version is taken before the read so a mutation that commits while
	// the read is in flight makes the write-back stale.
	version, verr := s.cache.Version(ctx, sessionID)
	lines, err = s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		s.logger.Printf("cart service: cache version session_id=%s error=%v", sessionID, verr)
		return lines, nil
	}
	if err := s.cache.Set(ctx, sessionID, version, lines); err != nil && !errors.Is(err, cache.ErrStale) {
		s.logger.Printf("cart service: cache set session_id=%s error=%v", sessionID, err)
	}
	return lines, nil
}

// Add appends the item or increments the line with the same (product, size) key.
func (s *Service) Add(ctx context.Context, sessionID string, item domain.CartItem) error {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return err
	}
	item, err = normalizeItem(item)
	if err != nil {
		return err
	}
	if s.productRepo == nil {
		return errors.New("product repository unavailable")
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s: %w", item.ProductID, domain.ErrNotFound)
		}
		return err
	}
	if err := checkSize(*product, item.Size); err != nil {
		return err
	}

	existing, err := s.repo.Quantity(ctx, sessionID, item.ProductID, item.Size)
	if err != nil {
		return err
	}
	if existing+item.Quantity > product.Stock {
		return fmt.Errorf("%w: %d in stock, %d requested", domain.ErrInsufficientStock, product.Stock, existing+item.Quantity)
	}

	if err := s.repo.AddItem(ctx, sessionID, item); err != nil {
		return err
	}
	s.invalidate(ctx, sessionID)
	return nil
}

// Replace overwrites the whole cart. Items sharing a (product, size) key are
// merged by summing their quantities.
func (s *Service) Replace(ctx context.Context, sessionID string, items []domain.CartItem) error {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return err
	}

	merged := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, raw := range items {
		item, err := normalizeItem(raw)
		if err != nil {
			return err
		}
		key := item.ProductID + "\x00" + domain.SizeKey(item.Size)
		if pos, ok := index[key]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}

	if err := s.repo.Replace(ctx, sessionID, merged); err != nil {
		return err
	}
	s.invalidate(ctx, sessionID)
	return nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.invalidate(ctx, sessionID)
	return nil
}

// Invalidate drops the cached cart; used when another component empties it.
func (s *Service) Invalidate(ctx context.Context, sessionID string) {
	s.invalidate(ctx, strings.TrimSpace(sessionID))
}

func (s *Service) invalidate(ctx context.Context, sessionID string) {
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Printf("cart service: cache delete session_id=%s error=%v", sessionID, err)
	}
}

func normalizeSession(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("%w: session id required", domain.ErrInvalidInput)
	}
	return sessionID, nil
}

func normalizeItem(item domain.CartItem) (domain.CartItem, error) {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		return item, fmt.Errorf("%w: product_id required", domain.ErrInvalidInput)
	}
	if item.Quantity < 1 {
		return item, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if item.Size != nil {
		size := strings.TrimSpace(*item.Size)
		item.Size = domain.SizeFromKey(size)
	}
	return item, nil
}

func checkSize(p domain.Product, size *string) error {
	switch {
	case len(p.Sizes) == 0 && size != nil:
		return fmt.Errorf("%w: product %s has no sizes", domain.ErrInvalidInput, p.ID)
	case len(p.Sizes) > 0 && size == nil:
		return fmt.Errorf("%w: size required", domain.ErrInvalidInput)
	case size != nil && !slices.Contains(p.Sizes, *size):
		return fmt.Errorf("%w: size %q not offered", domain.ErrInvalidInput, *size)
	}
	return nil
}
