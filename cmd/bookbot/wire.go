package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/bookbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/bookbot/internal/adapters/driven/catalog"
	"github.com/custodia-labs/bookbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/bookbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/bookbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/bookbot/internal/adapters/driven/vector/chromem"
	vectormemory "github.com/custodia-labs/bookbot/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/bookbot/internal/adapters/driving/cli"
	"github.com/custodia-labs/bookbot/internal/chunker"
	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/core/services"
)

func openSettings(dir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}

// buildServices wires the chat pipeline. Resources opened before a
// failure are released before returning.
func buildServices(_ context.Context, settings domain.Settings, dir string) (_ *cli.Services, err error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	limiter := ai.NewRateLimiter(settings.RateLimitRPS)

	llm, err := ai.CreateLLMService(settings.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm: %w", err)
	}
	closers = append(closers, llm.Close)
	llm = ai.WrapLLM(llm, limiter)

	embedder, err := ai.CreateEmbeddingService(settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	closers = append(closers, embedder.Close)
	embedder = ai.WrapEmbedding(embedder, limiter)

	index, err := openIndex(settings.Index)
	if err != nil {
		return nil, err
	}
	closers = append(closers, index.Close)

	carts, err := openCartStore(settings.CartBackend, dir)
	if err != nil {
		return nil, err
	}
	closers = append(closers, carts.Close)

	promptDir := ""
	if dir != "" {
		promptDir = filepath.Join(dir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	retriever := services.NewRetriever(embedder, index, settings.RetrievalK)
	cart := services.NewCartService(carts, retriever)
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunk.Size),
		chunker.WithOverlap(settings.Chunk.Overlap),
	)

	chat := services.NewChatbotService(
		retriever,
		services.NewPromptBuilder(prompts),
		llm,
		services.NewIntentRouter(settings.IntentMode),
		cart,
		services.ChatbotConfig{
			K:           settings.RetrievalK,
			Temperature: settings.LLM.Temperature,
			MaxTokens:   settings.LLM.MaxTokens,
		},
	)

	return &cli.Services{
		Chat:  chat,
		Cart:  cart,
		Index: services.NewIndexerService(catalog.NewSource(settings.CatalogPath), splitter, embedder, index, 0),
		Close: closeAll,
	}, nil
}

func openIndex(settings domain.IndexSettings) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.VectorBackendMemory:
		return vectormemory.NewIndex(), nil
	case domain.VectorBackendChromem:
		index, err := chromem.NewIndex(settings.Dir, settings.Collection)
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
		return index, nil
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrConfiguration, settings.Backend)
	}
}

// openCartStore keeps the sqlite database under dir/data, or under the
// default directory when dir is empty.
func openCartStore(backend domain.CartBackend, dir string) (driven.CartStore, error) {
	switch backend {
	case domain.CartBackendMemory:
		return memory.NewCartStore(), nil
	case domain.CartBackendSQLite:
		dataDir := ""
		if dir != "" {
			dataDir = filepath.Join(dir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open cart store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown cart backend %q", domain.ErrConfiguration, backend)
	}
}
