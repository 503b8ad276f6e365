// Package ai builds the LLM and embedding adapters named by the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/bookbot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/bookbot/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/bookbot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/bookbot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

const fixHint = "check 'bookbot settings show'"

// CreateLLMService creates the completion adapter for settings.Provider.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: llm provider %q is not configured", domain.ErrConfiguration, settings.Provider)
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = settings.Provider.DefaultBaseURL()
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: baseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderGemini, domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
			Name:    settings.Provider.String(),
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateEmbeddingService creates the embedding adapter for settings.Provider.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrConfiguration, settings.Provider)
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = settings.Provider.DefaultBaseURL()
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: baseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderGemini, domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
			Name:    settings.Provider.String(),
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

// CreateAndValidateLLMService creates an LLM service and checks it answers a ping.
func CreateAndValidateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and checks
// it answers a ping.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	settings domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w); %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}
