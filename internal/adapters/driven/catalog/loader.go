package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.CatalogSource = (*Source)(nil)

// Source is a catalog file on disk.
type Source struct {
	path string
}

// NewSource creates a catalog source for path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the catalog file path.
func (s *Source) Path() string {
	return s.path
}

// Load reads and validates every record.
func (s *Source) Load(_ context.Context) ([]domain.BookRecord, error) {
	return Load(s.path)
}

// bookID accepts a JSON/YAML number or string.
type bookID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *bookID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = bookID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = bookID(n.String())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (id *bookID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	*id = bookID(node.Value)
	return nil
}

// record mirrors one catalog entry on disk.
type record struct {
	ID      bookID  `json:"id" yaml:"id"`
	Title   string  `json:"title" yaml:"title"`
	Genre   string  `json:"genre" yaml:"genre"`
	Author  string  `json:"author" yaml:"author"`
	Summary string  `json:"summary" yaml:"summary"`
	Price   float64 `json:"price" yaml:"price"`
	Stock   int     `json:"stock" yaml:"stock"`
}

// Load reads the catalog at path. Files ending in .yaml or .yml are read as
// YAML, anything else as JSON. Errors wrap domain.ErrCatalogLoad.
func Load(path string) ([]domain.BookRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogLoad, err)
	}

	records, err := decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCatalogLoad, path, err)
	}

	books, err := toBooks(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCatalogLoad, path, err)
	}
	return books, nil
}

func decode(path string, data []byte) ([]record, error) {
	var records []record

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return records, nil
}

func toBooks(records []record) ([]domain.BookRecord, error) {
	books := make([]domain.BookRecord, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("record %d: empty title", i+1)
		}

		id := strings.TrimSpace(string(r.ID))
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q (first at record %d)", i+1, id, prev)
		}
		seen[id] = i + 1

		if r.Price < 0 {
			return nil, fmt.Errorf("record %d: negative price", i+1)
		}

		books = append(books, domain.BookRecord{
			ID:      id,
			Title:   r.Title,
			Author:  r.Author,
			Genre:   r.Genre,
			Summary: r.Summary,
			Price:   r.Price,
			Stock:   r.Stock,
		})
	}
	return books, nil
}
