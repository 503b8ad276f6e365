// Package openai provides an LLM service adapter for OpenAI-compatible chat
// completion APIs. Gemini is reached through its OpenAI-compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the LLM service.
type LLMConfig struct {
	// APIKey is the provider API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Set it to domain.GeminiOpenAIBaseURL for Gemini.
	BaseURL string

	// Model is the chat model (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Name labels errors, e.g. "gemini" (default: "openai").
	Name string
}

// LLMService implements driven.LLMService with go-openai.
type LLMService struct {
	client *openai.Client
	model  string
	name   string
}

// NewLLMService creates a new chat completion service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
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
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		name:   cfg.Name,
	}, nil
}

// Chat sends the conversation and returns the first choice's content.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	// go-openai omits a zero temperature, so an explicit 0 is sent as the
	// smallest positive float the request accepts.
	req.Temperature = float32(opts.Temperature)
	if req.Temperature <= 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}
	if opts.Schema != nil {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        opts.Schema.Name,
				Description: opts.Schema.Description,
				Schema:      schemaDefinition(opts.Schema),
				Strict:      true,
			},
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", s.wrap("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned: %w", s.name, domain.ErrProvider)
	}

	return resp.Choices[0].Message.Content, nil
}

// schemaDefinition converts a flat string-field schema to JSON Schema.
func schemaDefinition(schema *driven.ResponseSchema) *jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(schema.Properties))
	for name, prop := range schema.Properties {
		props[name] = jsonschema.Definition{
			Type:        jsonschema.String,
			Description: prop.Description,
			Enum:        prop.Enum,
		}
	}
	return &jsonschema.Definition{
		Type:                 jsonschema.Object,
		Description:          schema.Description,
		Properties:           props,
		Required:             schema.Required,
		AdditionalProperties: false,
	}
}

// wrap classifies a client error. Every failure wraps domain.ErrProvider;
// HTTP 429 additionally wraps domain.ErrRateLimited.
func (s *LLMService) wrap(op string, err error) error {
	if statusCode(err) == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %s: %w: %w: %w", s.name, op, domain.ErrProvider, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %s: %w: %w", s.name, op, domain.ErrProvider, err)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the key and endpoint by listing models.
// This does not run inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return s.wrap("ping", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
