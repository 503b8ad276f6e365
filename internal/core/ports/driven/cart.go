package driven

import (
	"context"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// CartStore keeps one cart per session.
type CartStore interface {
	// Get returns a copy of the session's cart. Unknown sessions have an empty cart.
	Get(ctx context.Context, session string) (domain.Cart, error)

	// Update runs fn on the session's cart and stores the returned cart.
	// Concurrent updates of one session are serialised. If fn returns an
	// error the cart is left unchanged.
	Update(ctx context.Context, session string, fn func(domain.Cart) (domain.Cart, error)) error

	// Sessions lists the sessions that have a stored cart.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
