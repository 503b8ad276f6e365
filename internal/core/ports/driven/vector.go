package driven

import (
	"context"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// VectorIndex stores embedded chunks and answers nearest-neighbour queries.
type VectorIndex interface {
	// Add stores chunks with their embeddings. Both slices have equal length.
	// Adding an existing chunk ID replaces it.
	Add(ctx context.Context, chunks []domain.IndexedChunk, embeddings [][]float32) error

	// Search returns up to k chunks ordered by similarity descending.
	// k larger than Count is clamped. An empty index returns domain.ErrEmptyIndex.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Replace swaps the whole contents for chunks in one step. Concurrent
	// searches see either the old or the new contents, never a mix or an
	// empty index. On error the old contents are kept where possible.
	Replace(ctx context.Context, chunks []domain.IndexedChunk, embeddings [][]float32) error

	// Close releases resources.
	Close() error
}
