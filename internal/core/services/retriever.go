package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// DefaultRetrievalK is the number of chunks fetched per query.
const DefaultRetrievalK = 10

// Retriever wraps the vector index with a fixed similarity search policy.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	k        int
}

// NewRetriever creates a retriever. k <= 0 uses DefaultRetrievalK.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, k int) *Retriever {
	if k <= 0 {
		k = DefaultRetrievalK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		k:        k,
	}
}

// K returns the default number of chunks per query.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve returns up to k chunks ranked by similarity to text, most similar
// first. k <= 0 uses the retriever's default. Chunks of one book are not
// deduplicated.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) ([]domain.IndexedChunk, error) {
	if k <= 0 {
		k = r.k
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, providerError("embed query", err)
	}

	hits, err := r.index.Search(ctx, vec, k)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			return nil, err
		}
		return nil, fmt.Errorf("vector search: %w", err)
	}

	chunks := make([]domain.IndexedChunk, len(hits))
	for i, hit := range hits {
		chunks[i] = hit.Chunk
		logger.Debug("  hit %d: %s (%.4f) %q", i+1, hit.Chunk.ID, hit.Similarity, hit.Chunk.Metadata.Title)
	}
	return chunks, nil
}

// retrieveOrEmpty treats an empty index as no hits.
func (r *Retriever) retrieveOrEmpty(ctx context.Context, text string, k int) ([]domain.IndexedChunk, error) {
	chunks, err := r.Retrieve(ctx, text, k)
	if errors.Is(err, domain.ErrEmptyIndex) {
		logger.Warn("Vector index is empty, continuing without context")
		return nil, nil
	}
	return chunks, err
}
