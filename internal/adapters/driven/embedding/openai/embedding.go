// Package openai provides an embedding service adapter for OpenAI-compatible
// APIs, including Gemini's OpenAI endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultModel    = "text-embedding-3-small"
	DefaultTimeout  = 60 * time.Second
	DefaultMaxBatch = 100
)

// Known model dimensions; other models report theirs after the first call.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"text-embedding-004":     768,
	"gemini-embedding-001":   3072,
}

// Config holds configuration for the embedding service.
type Config struct {
	// APIKey is the provider API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// MaxBatch caps inputs per request (default: 100).
	MaxBatch int

	// Name labels errors, e.g. "gemini" (default: "openai").
	Name string
}

// EmbeddingService generates embeddings with go-openai.
type EmbeddingService struct {
	client     *openai.Client
	model      string
	name       string
	maxBatch   int
	dimensions atomic.Int64
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required: %w", cfg.Name, domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	s := &EmbeddingService{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		name:     cfg.Name,
		maxBatch: cfg.MaxBatch,
	}
	s.dimensions.Store(int64(modelDimensions[cfg.Model]))
	return s, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in requests of at most MaxBatch inputs.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += s.maxBatch {
		end := min(start+s.maxBatch, len(texts))
		batch := texts[start:end]

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(s.model),
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: create embeddings: %w: %w", s.name, domain.ErrProvider, err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("%s: got %d embeddings for %d texts: %w",
				s.name, len(resp.Data), len(batch), domain.ErrProvider)
		}

		// Data carries an index; order by it rather than trusting response order.
		ordered := make([][]float32, len(batch))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("%s: embedding index %d out of range: %w", s.name, d.Index, domain.ErrProvider)
			}
			ordered[d.Index] = d.Embedding
		}
		vectors = append(vectors, ordered...)
	}

	if len(vectors) > 0 {
		s.dimensions.Store(int64(len(vectors[0])))
	}
	return vectors, nil
}

// Dimensions returns the embedding vector size, or 0 if not yet known.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dimensions.Load())
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the key and endpoint by listing models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w: %w", s.name, domain.ErrProvider, err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
