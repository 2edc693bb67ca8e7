package cache

import (
	"context"
	"errors"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

// CartCache holds the denormalized cart of a session between mutations.
//
// Entries are versioned. A reader takes Version before loading the cart from
// the database and hands it back to Set; Set drops the write when a Delete of
// the session or an InvalidateAll happened in between, so a slow read can
// never overwrite the result of a newer mutation.
type CartCache interface {
	Version(ctx context.Context, sessionID string) (string, error)
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Set(ctx context.Context, sessionID, version string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
	// InvalidateAll drops every cached cart, e.g. after the catalogue changed.
	InvalidateAll(ctx context.Context) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStale is returned by Set when the version moved since it was read.
	ErrStale     = errors.New("cache entry stale")
)

// Nop is used when no Redis is configured; every read misses.
type Nop struct{}

func (Nop) Version(context.Context, string) (string, error) { return "", nil }
func (Nop) Get(context.Context, string) ([]domain.CartLine, error) { return nil, ErrCacheMiss }
func (Nop) Set(context.Context, string, string, []domain.CartLine) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) InvalidateAll(context.Context) error { return nil }
