package driven

import (
	"context"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// CatalogSource reads the book catalog.
type CatalogSource interface {
	// Load returns every record in file order. Failures wrap domain.ErrCatalogLoad.
	Load(ctx context.Context) ([]domain.BookRecord, error)

	// Path returns the catalog location.
	Path() string
}

// Splitter cuts text into bounded, overlapping segments.
type Splitter interface {
	// Split returns the segments in order. Empty text yields none.
	Split(text string) []string
}
