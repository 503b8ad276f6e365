package driving

import (
	"context"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// IndexService builds the vector index from the catalog.
type IndexService interface {
	// Build indexes the catalog. A populated index is reused unless rebuild is set.
	Build(ctx context.Context, rebuild bool) (domain.IndexReport, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)
}
