package driving

import (
	"context"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// ChatService answers one user message for a session.
type ChatService interface {
	// Ask runs retrieval, generation and intent routing.
	// Provider failures wrap domain.ErrProvider.
	Ask(ctx context.Context, session, query string) (domain.Reply, error)
}
