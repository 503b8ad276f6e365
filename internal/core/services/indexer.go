package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.IndexService = (*IndexerService)(nil)

// DefaultEmbedBatchSize is the number of chunks embedded per provider call.
const DefaultEmbedBatchSize = 100

// IndexerService fills the vector index from the catalog.
type IndexerService struct {
	catalog   driven.CatalogSource
	splitter  driven.Splitter
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	batchSize int
}

// NewIndexerService creates an indexer. batchSize <= 0 uses DefaultEmbedBatchSize.
func NewIndexerService(
	catalog driven.CatalogSource,
	splitter driven.Splitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	batchSize int,
) *IndexerService {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	return &IndexerService{
		catalog:   catalog,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
	}
}

// Count returns the number of indexed chunks.
func (s *IndexerService) Count(ctx context.Context) (int, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count index: %w", err)
	}
	return n, nil
}

// Build indexes the catalog. A populated index is kept unless rebuild is
// set. The index is replaced in one step after every chunk is embedded, so
// a failed build never leaves a partial index behind.
func (s *IndexerService) Build(ctx context.Context, rebuild bool) (domain.IndexReport, error) {
	logger.Section("Index")

	existing, err := s.Count(ctx)
	if err != nil {
		return domain.IndexReport{}, err
	}
	report := domain.IndexReport{Existing: existing}

	if existing > 0 && !rebuild {
		logger.Info("Index already holds %d chunks, skipping build", existing)
		report.Skipped = true
		return report, nil
	}

	books, err := s.catalog.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load catalog %s: %w", s.catalog.Path(), err)
	}
	report.Books = len(books)
	logger.Info("Loaded %d books from %s", len(books), s.catalog.Path())

	chunks := s.Chunks(books)
	logger.Debug("Split into %d chunks", len(chunks))

	// Embed everything before touching the index so a provider failure
	// leaves the previous contents in place.
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		embedded, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return report, providerError(fmt.Sprintf("embed chunks %d-%d", start, end), err)
		}
		if len(embedded) != len(batch) {
			return report, fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrProvider, len(embedded), len(batch))
		}
		vectors = append(vectors, embedded...)
		logger.Debug("Embedded %d/%d chunks", len(vectors), len(chunks))
	}

	if existing > 0 {
		logger.Info("Rebuilding: replacing %d existing chunks", existing)
	}
	if err := s.index.Replace(ctx, chunks, vectors); err != nil {
		return report, fmt.Errorf("store chunks: %w", err)
	}
	report.Chunks = len(chunks)

	logger.Info("Indexed %d books as %d chunks", report.Books, report.Chunks)
	return report, nil
}

// Chunks flattens and splits books. Every chunk of a book carries the
// book's metadata and an ID derived from its position.
func (s *IndexerService) Chunks(books []domain.BookRecord) []domain.IndexedChunk {
	var chunks []domain.IndexedChunk
	for _, book := range books {
		text, meta := book.Flatten()
		for i, segment := range s.splitter.Split(text) {
			chunks = append(chunks, domain.IndexedChunk{
				ID:       domain.ChunkID(book.ID, i),
				Text:     segment,
				Metadata: meta,
			})
		}
	}
	return chunks
}
