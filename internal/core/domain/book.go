package domain

import (
	"strconv"
	"strings"
)

// BookRecord is an immutable catalog entry.
type BookRecord struct {
	// ID is the catalog identifier, kept as a string even when numeric on disk.
	ID string

	Title   string
	Author  string
	Genre   string
	Summary string

	// Price is the unit price in TL.
	Price float64

	// Stock is the number of copies available.
	Stock int
}

// ChunkMetadata is the searchable metadata attached to every chunk of a book.
// Title, Author and Genre are lower-cased.
type ChunkMetadata struct {
	BookID string
	Title  string
	Author string
	Genre  string
	Price  float64
	Stock  int
}

// IndexedChunk is a bounded slice of a flattened book record.
type IndexedChunk struct {
	// ID is "<bookID>-<position>".
	ID string

	// Text is the chunk content that was embedded.
	Text string

	Metadata ChunkMetadata
}

// ChunkID builds the deterministic identifier of a book's position-th chunk.
func ChunkID(bookID string, position int) string {
	return bookID + "-" + strconv.Itoa(position)
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk IndexedChunk

	// Similarity is the cosine similarity to the query, higher is closer.
	Similarity float64
}

// FormatPrice renders a price in its shortest form, so 150 prints "150"
// and 85.5 prints "85.5".
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// Flatten renders the record as the text that is chunked and embedded,
// together with the lower-cased metadata every chunk carries.
func (b BookRecord) Flatten() (string, ChunkMetadata) {
	var sb strings.Builder
	sb.WriteString(b.Title)
	sb.WriteString(" - ")
	sb.WriteString(b.Genre)
	sb.WriteString(" türünde bir kitaptır, ")
	sb.WriteString(b.Author)
	sb.WriteString(" tarafından yazılmıştır. ")
	sb.WriteString(b.Summary)
	sb.WriteString(FormatPrice(b.Price))
	sb.WriteString(" TL. Stok: ")
	sb.WriteString(strconv.Itoa(b.Stock))
	sb.WriteString(" adet.")

	return sb.String(), b.Metadata()
}

// Metadata returns the searchable metadata of the record.
func (b BookRecord) Metadata() ChunkMetadata {
	return ChunkMetadata{
		BookID: b.ID,
		Title:  strings.ToLower(b.Title),
		Author: strings.ToLower(b.Author),
		Genre:  strings.ToLower(b.Genre),
		Price:  b.Price,
		Stock:  b.Stock,
	}
}
