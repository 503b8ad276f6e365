package driving

import (
	"context"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// CartService runs cart commands for a session.
// Unmatched titles produce a normal message, not an error.
type CartService interface {
	// Add looks the fragment up in the index and appends the first title match.
	Add(ctx context.Context, session, fragment string) (string, error)

	// Remove drops the first cart item whose title contains the fragment.
	Remove(ctx context.Context, session, fragment string) (string, error)

	// Show lists the cart.
	Show(ctx context.Context, session string) (string, error)

	// Clear empties the cart.
	Clear(ctx context.Context, session string) (string, error)

	// Total reports the summed price.
	Total(ctx context.Context, session string) (string, error)

	// Items returns the cart contents.
	Items(ctx context.Context, session string) (domain.Cart, error)

	// Sessions lists the sessions that have a stored cart.
	Sessions(ctx context.Context) ([]string, error)
}
