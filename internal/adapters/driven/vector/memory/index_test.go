package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

func chunk(id, title string) domain.IndexedChunk {
	return domain.IndexedChunk{ID: id, Text: title, Metadata: domain.ChunkMetadata{Title: title}}
}

func TestIndex_SearchEmpty(t *testing.T) {
	idx := NewIndex()
	_, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestIndex_SearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()

	require.NoError(t, idx.Add(ctx,
		[]domain.IndexedChunk{chunk("a-0", "a"), chunk("b-0", "b"), chunk("c-0", "c")},
		[][]float32{{1, 0}, {0, 1}, {0.7, 0.7}},
	))

	hits, err := idx.Search(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a-0", hits[0].Chunk.ID)
	assert.Equal(t, "c-0", hits[1].Chunk.ID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_SearchClampsK(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Add(ctx, []domain.IndexedChunk{chunk("a-0", "a")}, [][]float32{{1}}))

	hits, err := idx.Search(ctx, []float32{1}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_AddReplacesSameID(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Add(ctx, []domain.IndexedChunk{chunk("a-0", "old")}, [][]float32{{1, 0}}))
	require.NoError(t, idx.Add(ctx, []domain.IndexedChunk{chunk("a-0", "new")}, [][]float32{{0, 1}}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", hits[0].Chunk.Metadata.Title)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Add(ctx, []domain.IndexedChunk{chunk("a-0", "a")}, [][]float32{{1, 0}}))

	err := idx.Add(ctx, []domain.IndexedChunk{chunk("b-0", "b")}, [][]float32{{1, 0, 0}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_LengthMismatch(t *testing.T) {
	err := NewIndex().Add(context.Background(), []domain.IndexedChunk{chunk("a-0", "a")}, nil)
	assert.Error(t, err)
}

func TestIndex_Replace(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Add(ctx,
		[]domain.IndexedChunk{chunk("a-0", "a"), chunk("b-0", "b")},
		[][]float32{{1}, {2}},
	))

	// A new dimension is accepted since the old contents are discarded.
	require.NoError(t, idx.Replace(ctx, []domain.IndexedChunk{chunk("c-0", "c")}, [][]float32{{1, 2, 3}}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	hits, err := idx.Search(ctx, []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c-0", hits[0].Chunk.ID)
	assert.NoError(t, idx.Close())
}

func TestIndex_ReplaceErrorKeepsContents(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	require.NoError(t, idx.Add(ctx, []domain.IndexedChunk{chunk("a-0", "a")}, [][]float32{{1, 0}}))

	err := idx.Replace(ctx,
		[]domain.IndexedChunk{chunk("b-0", "b"), chunk("c-0", "c")},
		[][]float32{{1, 0}, {1, 0, 0}},
	)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Error(t, idx.Replace(ctx, []domain.IndexedChunk{chunk("b-0", "b")}, nil))

	hits, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a-0", hits[0].Chunk.ID)
}

func TestIndex_ReplaceIsAtomicForSearches(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex()
	old := []domain.IndexedChunk{chunk("a-0", "a"), chunk("b-0", "b")}
	require.NoError(t, idx.Add(ctx, old, [][]float32{{1, 0}, {0, 1}}))

	next := make([]domain.IndexedChunk, 50)
	vectors := make([][]float32, 50)
	for n := range next {
		next[n] = chunk(fmt.Sprintf("n-%d", n), "n")
		vectors[n] = []float32{1, float32(n)}
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			hits, err := idx.Search(ctx, []float32{1, 1}, 0)
			if assert.NoError(t, err) {
				assert.Contains(t, []int{2, 50}, len(hits))
			}
		}
	}()

	for range 20 {
		require.NoError(t, idx.Replace(ctx, next, vectors))
		require.NoError(t, idx.Replace(ctx, old, [][]float32{{1, 0}, {0, 1}}))
	}
	close(stop)
	wg.Wait()
}
