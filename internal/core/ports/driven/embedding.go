package driven

import "context"

// EmbeddingService turns text into vectors for the VectorIndex.
type EmbeddingService interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length, or 0 before the first call.
	Dimensions() int

	ModelName() string

	// Ping sends a minimal request to check credentials and reachability.
	Ping(ctx context.Context) error

	Close() error
}
