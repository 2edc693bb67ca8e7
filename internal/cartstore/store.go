// Package cartstore mirrors the server-side cart of one session. Every
// mutation is sent to the backend and followed by a reload, so the local
// view never drifts from what the server holds.
package cartstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
)

// ErrNotInitialized is returned by every operation used before Start.
var ErrNotInitialized = errors.New("cartstore: used before Start")

// Backend is the cart half of the REST API.
type Backend interface {
	GetCart(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, sessionID string, item domain.CartItem) error
	ReplaceCart(ctx context.Context, sessionID string, items []domain.CartItem) error
	ClearCart(ctx context.Context, sessionID string) error
}

// Snapshot is an immutable view of the cart handed to subscribers.
type Snapshot struct {
	SessionID string
	Lines     []domain.CartLine
	Count     int
	Total     float64
}

type Store struct {
	backend Backend
	logger  *log.Logger

	mu        sync.Mutex
	started   bool
	sessionID string
	lines     []domain.CartLine
	// issued is the last load ticket handed out, applied the last one whose
	// response reached lines. Responses with ticket <= applied are stale.
	issued  uint64
	applied uint64

	subs    map[int]func(Snapshot)
	nextSub int
}

func New(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{backend: backend, logger: logger, subs: map[int]func(Snapshot){}}
}

// Start binds the store to sessionID and performs the first load. The store
// is usable even when that load fails.
func (s *Store) Start(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("cartstore: empty session id: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	s.started = true
	s.sessionID = sessionID
	s.lines = nil
	s.mu.Unlock()
	return s.Load(ctx)
}

// Load replaces local state with the server's cart. On failure local state
// is left untouched.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	s.issued++
	ticket, sessionID := s.issued, s.sessionID
	s.mu.Unlock()

	lines, err := s.backend.GetCart(ctx, sessionID)
	if err != nil {
		s.logger.Printf("cartstore: load session_id=%s error=%v", sessionID, err)
		return err
	}

	s.mu.Lock()
	if ticket <= s.applied || sessionID != s.sessionID {
		s.mu.Unlock()
		s.logger.Printf("cartstore: discarded stale load session_id=%s ticket=%d", sessionID, ticket)
		return nil
	}
	s.applied = ticket
	s.lines = lines
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Add posts one item, then reloads. A quantity below 1 is sent as 1.
func (s *Store) Add(ctx context.Context, productID string, quantity int, size *string) error {
	sessionID, err := s.session()
	if err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}
	item := domain.CartItem{ProductID: productID, Quantity: quantity, Size: size}
	if err := s.backend.AddToCart(ctx, sessionID, item); err != nil {
		s.logger.Printf("cartstore: add session_id=%s product_id=%s error=%v", sessionID, productID, err)
		return err
	}
	s.reload(ctx)
	return nil
}

// Update replaces the whole cart with lines, then reloads. Lines with a
// quantity below 1 are dropped.
func (s *Store) Update(ctx context.Context, lines []domain.CartLine) error {
	sessionID, err := s.session()
	if err != nil {
		return err
	}
	items := make([]domain.CartItem, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		items = append(items, l.Item())
	}
	if err := s.backend.ReplaceCart(ctx, sessionID, items); err != nil {
		s.logger.Printf("cartstore: update session_id=%s lines=%d error=%v", sessionID, len(items), err)
		return err
	}
	s.reload(ctx)
	return nil
}

// SetQuantity sets the quantity of one line; zero or less removes it.
func (s *Store) SetQuantity(ctx context.Context, productID string, size *string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID, size)
	}
	if _, err := s.session(); err != nil {
		return err
	}
	lines := s.Lines()
	found := false
	for i := range lines {
		if lines[i].Matches(productID, size) {
			lines[i].Quantity = quantity
			found = true
		}
	}
	if !found {
		return fmt.Errorf("cart line %s size=%q: %w", productID, domain.SizeKey(size), domain.ErrNotFound)
	}
	return s.Update(ctx, lines)
}

// Remove drops the (productID, size) line.
func (s *Store) Remove(ctx context.Context, productID string, size *string) error {
	if _, err := s.session(); err != nil {
		return err
	}
	lines := s.Lines()
	kept := lines[:0]
	for _, l := range lines {
		if !l.Matches(productID, size) {
			kept = append(kept, l)
		}
	}
	return s.Update(ctx, kept)
}

// Clear empties the cart without a reload. Loads still in flight are
// invalidated so they cannot bring old lines back.
func (s *Store) Clear(ctx context.Context) error {
	sessionID, err := s.session()
	if err != nil {
		return err
	}
	if err := s.backend.ClearCart(ctx, sessionID); err != nil {
		s.logger.Printf("cartstore: clear session_id=%s error=%v", sessionID, err)
		return err
	}

	s.mu.Lock()
	s.issued++
	s.applied = s.issued
	s.lines = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Total is the cart value in the base currency. Lines without a product
// snapshot count as zero.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.lines)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.lines)
}

func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every applied state change and returns a func
// that removes it.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) session() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return "", ErrNotInitialized
	}
	return s.sessionID, nil
}

// reload follows a successful mutation; its failure is logged by Load and
// does not fail the mutation.
func (s *Store) reload(ctx context.Context) {
	_ = s.Load(ctx)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID: s.sessionID,
		Lines:     cloneLines(s.lines),
		Count:     count(s.lines),
		Total:     total(s.lines),
	}
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func total(lines []domain.CartLine) float64 {
	var sum float64
	for _, l := range lines {
		if l.Product != nil {
			sum += l.Product.Price * float64(l.Quantity)
		}
	}
	return sum
}

func count(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	if lines == nil {
		return nil
	}
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
