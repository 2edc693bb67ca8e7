// Package session owns the anonymous session identifier that keys the
// server-side cart.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageKey is the client-local key the session id is stored under.
const StorageKey = "odyssey_session_id"

// Store is client-local persistent key/value storage.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// PutIfAbsent stores value unless key already has one, and returns the
	// value that is stored afterwards.
	PutIfAbsent(ctx context.Context, key, value string) (string, error)
}

// Ensure returns the persisted session id, creating one on first use.
// Concurrent first calls converge on the first id written.
func Ensure(ctx context.Context, store Store) (string, error) {
	id, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		return "", fmt.Errorf("read session id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}
	id, err = store.PutIfAbsent(ctx, StorageKey, NewID(time.Now()))
	if err != nil {
		return "", fmt.Errorf("store session id: %w", err)
	}
	return id, nil
}

// NewID builds an id of the form session_<unix-millis>_<random>.
func NewID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), random)
}
