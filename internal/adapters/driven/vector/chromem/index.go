// Package chromem provides a persistent vector index backed by chromem-go.
// Embeddings are computed by the caller; the collection never embeds text
// itself.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "books"

// Metadata keys stored on each document.
const (
	metaBookID = "book_id"
	metaTitle  = "title"
	metaAuthor = "author"
	metaGenre  = "genre"
	metaPrice  = "price"
	metaStock  = "stock"
)

var errNoEmbedder = errors.New("chromem: documents must be added with precomputed embeddings")

// noEmbedding is installed as the collection's embedding function.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// Index stores chunks in a chromem collection persisted under a directory.
//
// Replace writes a marker file before it drops the collection and removes
// it once the new contents are stored. A marker found at open time means
// a replace was interrupted, and the partial collection is discarded so
// the next build starts from scratch.
type Index struct {
	mu         sync.RWMutex
	db         *chromem.DB
	dir        string
	name       string
	collection *chromem.Collection
}

// NewIndex opens (or creates) the persistent database at dir.
// An empty dir keeps the database in memory.
func NewIndex(dir, collection string) (*Index, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dir, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db %s: %w", dir, err)
		}
	}

	idx := &Index{db: db, dir: dir, name: collection}

	col, err := db.GetOrCreateCollection(collection, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collection, err)
	}
	if idx.interrupted() {
		logger.Warn("chromem: collection %q was left half-written by an interrupted build, discarding %d documents",
			collection, col.Count())
		if col, err = idx.recreate(); err != nil {
			return nil, err
		}
		if err := idx.clearMarker(); err != nil {
			return nil, err
		}
	}
	logger.Debug("chromem collection %q has %d documents", collection, col.Count())

	idx.collection = col
	return idx, nil
}

// Add stores chunks with their embeddings. Existing IDs are overwritten.
func (i *Index) Add(ctx context.Context, chunks []domain.IndexedChunk, embeddings [][]float32) error {
	docs, err := toDocuments(chunks, embeddings)
	if err != nil || len(docs) == 0 {
		return err
	}

	i.mu.RLock()
	col := i.collection
	i.mu.RUnlock()

	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Replace drops the collection and stores chunks in a fresh one while
// holding the write lock, so searches wait for the swap instead of
// meeting an empty collection. If storing fails the previous collection
// keeps serving from memory and the marker stays, so the next open
// discards what was written to disk.
func (i *Index) Replace(ctx context.Context, chunks []domain.IndexedChunk, embeddings [][]float32) error {
	docs, err := toDocuments(chunks, embeddings)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.setMarker(); err != nil {
		return err
	}
	col, err := i.recreate()
	if err != nil {
		return err
	}
	if len(docs) > 0 {
		if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			logger.Warn("chromem: replace failed, serving the previous %d documents until restart", i.collection.Count())
			return fmt.Errorf("add documents: %w", err)
		}
	}
	if err := i.clearMarker(); err != nil {
		return err
	}
	i.collection = col
	return nil
}

// Search returns up to k chunks ordered by descending similarity.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	i.mu.RLock()
	col := i.collection
	i.mu.RUnlock()

	count := col.Count()
	if count == 0 {
		return nil, domain.ErrEmptyIndex
	}
	// chromem rejects nResults above the document count.
	if k <= 0 || k > count {
		k = count
	}

	results, err := col.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	hits := make([]domain.ScoredChunk, len(results))
	for n, r := range results {
		hits[n] = domain.ScoredChunk{
			Chunk: domain.IndexedChunk{
				ID:       r.ID,
				Text:     r.Content,
				Metadata: fromMetadata(r.Metadata),
			},
			Similarity: float64(r.Similarity),
		}
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (i *Index) Count(context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.collection.Count(), nil
}

// recreate drops the named collection and returns an empty one.
func (i *Index) recreate() (*chromem.Collection, error) {
	if err := i.db.DeleteCollection(i.name); err != nil {
		return nil, fmt.Errorf("delete collection %s: %w", i.name, err)
	}
	col, err := i.db.GetOrCreateCollection(i.name, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("recreate collection %s: %w", i.name, err)
	}
	return col, nil
}

// markerPath is empty for in-memory databases.
func (i *Index) markerPath() string {
	if i.dir == "" {
		return ""
	}
	return filepath.Join(i.dir, i.name+".building")
}

func (i *Index) interrupted() bool {
	path := i.markerPath()
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (i *Index) setMarker() error {
	path := i.markerPath()
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		return fmt.Errorf("mark collection %s: %w", i.name, err)
	}
	return nil
}

func (i *Index) clearMarker() error {
	path := i.markerPath()
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unmark collection %s: %w", i.name, err)
	}
	return nil
}

// Close is a no-op; chromem persists on every write.
func (i *Index) Close() error {
	return nil
}

func toDocuments(chunks []domain.IndexedChunk, embeddings [][]float32) ([]chromem.Document, error) {
	if len(chunks) != len(embeddings) {
		return nil, fmt.Errorf("chromem: %d chunks but %d embeddings", len(chunks), len(embeddings))
	}
	docs := make([]chromem.Document, len(chunks))
	for n, chunk := range chunks {
		docs[n] = chromem.Document{
			ID:        chunk.ID,
			Metadata:  toMetadata(chunk.Metadata),
			Embedding: embeddings[n],
			Content:   chunk.Text,
		}
	}
	return docs, nil
}

func toMetadata(m domain.ChunkMetadata) map[string]string {
	return map[string]string{
		metaBookID: m.BookID,
		metaTitle:  m.Title,
		metaAuthor: m.Author,
		metaGenre:  m.Genre,
		metaPrice:  domain.FormatPrice(m.Price),
		metaStock:  strconv.Itoa(m.Stock),
	}
}

// fromMetadata tolerates missing or malformed numbers, which read as zero.
func fromMetadata(meta map[string]string) domain.ChunkMetadata {
	price, _ := strconv.ParseFloat(meta[metaPrice], 64)
	stock, _ := strconv.Atoi(meta[metaStock])
	return domain.ChunkMetadata{
		BookID: meta[metaBookID],
		Title:  meta[metaTitle],
		Author: meta[metaAuthor],
		Genre:  meta[metaGenre],
		Price:  price,
		Stock:  stock,
	}
}
