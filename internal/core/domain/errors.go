package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a missing credential or invalid settings.
	// It is fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrCatalogLoad indicates the catalog file is missing or malformed.
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrProvider indicates an embedding or completion call failed.
	// It fails the current request only.
	ErrProvider = errors.New("provider error")

	// ErrEmptyIndex indicates a search against an index with no documents.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates a provider rate limit wait was cancelled.
	ErrRateLimited = errors.New("rate limited")
)
