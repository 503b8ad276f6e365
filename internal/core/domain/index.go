package domain

// IndexReport summarises one indexing run.
type IndexReport struct {
	// Books is the number of catalog records read.
	Books int

	// Chunks is the number of chunks written.
	Chunks int

	// Skipped is true when a populated index was reused.
	Skipped bool

	// Existing is the chunk count found before the run.
	Existing int
}
