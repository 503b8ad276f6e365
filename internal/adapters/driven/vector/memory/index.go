// Package memory provides an in-memory vector index using brute-force
// cosine similarity. It is used for tests and for runs that do not need
// a persisted index.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrDimensionMismatch is returned when vectors of different sizes are mixed.
var ErrDimensionMismatch = errors.New("memory: vector dimension mismatch")

var errLengthMismatch = errors.New("memory: chunks and embeddings length mismatch")

type entry struct {
	chunk  domain.IndexedChunk
	vector []float32
	norm   float64
}

// Index is a thread-safe in-memory VectorIndex.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	byID      map[string]int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{byID: make(map[string]int)}
}

// Add stores chunks with their embeddings, replacing chunks with the same ID.
func (i *Index) Add(_ context.Context, chunks []domain.IndexedChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return errLengthMismatch
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.insert(chunks, embeddings)
}

// Replace builds the new contents aside and swaps them in under the lock.
func (i *Index) Replace(_ context.Context, chunks []domain.IndexedChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return errLengthMismatch
	}

	next := NewIndex()
	if err := next.insert(chunks, embeddings); err != nil {
		return err
	}

	i.mu.Lock()
	i.dimension, i.entries, i.byID = next.dimension, next.entries, next.byID
	i.mu.Unlock()
	return nil
}

// insert adds entries; the caller holds the write lock.
func (i *Index) insert(chunks []domain.IndexedChunk, embeddings [][]float32) error {
	for n, chunk := range chunks {
		vec := embeddings[n]
		if i.dimension == 0 {
			i.dimension = len(vec)
		}
		if len(vec) != i.dimension {
			return ErrDimensionMismatch
		}

		e := entry{
			chunk:  chunk,
			vector: append([]float32(nil), vec...),
			norm:   norm(vec),
		}
		if pos, ok := i.byID[chunk.ID]; ok {
			i.entries[pos] = e
			continue
		}
		i.byID[chunk.ID] = len(i.entries)
		i.entries = append(i.entries, e)
	}
	return nil
}

// Search returns the k most similar chunks. Ties keep insertion order.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != i.dimension {
		return nil, ErrDimensionMismatch
	}
	if k <= 0 || k > len(i.entries) {
		k = len(i.entries)
	}

	qnorm := norm(query)
	results := make([]domain.ScoredChunk, len(i.entries))
	for n, e := range i.entries {
		results[n] = domain.ScoredChunk{
			Chunk:      e.chunk,
			Similarity: cosine(e.vector, query, e.norm, qnorm),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Similarity > results[b].Similarity
	})
	return results[:k], nil
}

// Count returns the number of stored chunks.
func (i *Index) Count(context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries), nil
}

// Close is a no-op.
func (i *Index) Close() error {
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
	}
	return dot / (na * nb)
}
