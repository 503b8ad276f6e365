package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure CartStore implements the interface.
var _ driven.CartStore = (*CartStore)(nil)

// CartStore is an in-memory implementation of driven.CartStore.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewCartStore creates a new in-memory cart store.
func NewCartStore() *CartStore {
	return &CartStore{
		carts: make(map[string]domain.Cart),
	}
}

// Get returns a copy of the session's cart.
func (s *CartStore) Get(_ context.Context, session string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(domain.Cart{}, s.carts[session]...), nil
}

// Update applies fn to the session's cart under the store lock. An empty
// result drops the session.
func (s *CartStore) Update(ctx context.Context, session string, fn func(domain.Cart) (domain.Cart, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(append(domain.Cart{}, s.carts[session]...))
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		delete(s.carts, session)
		return nil
	}
	s.carts[session] = updated
	return nil
}

// Sessions lists sessions with a non-empty cart.
func (s *CartStore) Sessions(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]string, 0, len(s.carts))
	for id := range s.carts {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}

// Close is a no-op.
func (s *CartStore) Close() error {
	return nil
}
