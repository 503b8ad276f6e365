package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "provider.llm"
	keyEmbedProvider  = "provider.embedding"
	keyAPIKeyEnv      = "provider.api_key_env"
	keyBaseURL        = "provider.base_url"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTimeout     = "llm.timeout"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedTimeout   = "embedding.timeout"
	keyCatalogPath    = "catalog.path"
	keyIndexDir       = "index.dir"
	keyIndexColl      = "index.collection"
	keyIndexBackend   = "index.backend"
	keyIndexRebuild   = "index.rebuild"
	keyChunkSize      = "chunk.size"
	keyChunkOverlap   = "chunk.overlap"
	keyRetrievalK     = "retrieval.k"
	keyIntentMode     = "intent.mode"
	keyCartBackend    = "cart.backend"
	keyRateLimitRPS   = "ratelimit.rps"
	keyServerAddr     = "server.addr"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

type settingKey struct {
	name  string
	kind  valueKind
	check func(string) bool
}

// settingKeys lists recognised keys in display order.
var settingKeys = []settingKey{
	{keyLLMProvider, kindString, func(v string) bool { return domain.AIProvider(v).IsValid() }},
	{keyEmbedProvider, kindString, func(v string) bool { return domain.AIProvider(v).IsValid() }},
	{keyAPIKeyEnv, kindString, nil},
	{keyBaseURL, kindString, nil},
	{keyLLMModel, kindString, nil},
	{keyLLMBaseURL, kindString, nil},
	{keyLLMTemperature, kindFloat, nil},
	{keyLLMMaxTokens, kindInt, nil},
	{keyLLMTimeout, kindDuration, nil},
	{keyEmbedModel, kindString, nil},
	{keyEmbedBaseURL, kindString, nil},
	{keyEmbedTimeout, kindDuration, nil},
	{keyCatalogPath, kindString, nil},
	{keyIndexDir, kindString, nil},
	{keyIndexColl, kindString, nil},
	{keyIndexBackend, kindString, func(v string) bool { return domain.VectorBackend(v).IsValid() }},
	{keyIndexRebuild, kindBool, nil},
	{keyChunkSize, kindInt, nil},
	{keyChunkOverlap, kindInt, nil},
	{keyRetrievalK, kindInt, nil},
	{keyIntentMode, kindString, func(v string) bool { return domain.IntentMode(v).IsValid() }},
	{keyCartBackend, kindString, func(v string) bool { return domain.CartBackend(v).IsValid() }},
	{keyRateLimitRPS, kindFloat, nil},
	{keyServerAddr, kindString, nil},
}

// SettingsService resolves domain.Settings from the config store and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading credentials from os.Getenv.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Used by tests.
func (s *SettingsService) SetEnvLookup(fn func(string) string) {
	s.getenv = fn
}

// Get returns current settings with defaults applied.
func (s *SettingsService) Get() (domain.Settings, error) {
	defaults := domain.DefaultSettings()

	llmProvider := domain.AIProvider(s.getString(keyLLMProvider, defaults.LLM.Provider.String()))
	embedProvider := domain.AIProvider(s.getString(keyEmbedProvider, defaults.Embedding.Provider.String()))

	settings := domain.Settings{
		LLM: domain.LLMSettings{
			Provider:    llmProvider,
			Model:       s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:     s.getString(keyLLMBaseURL, s.configStore.GetString(keyBaseURL)),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Timeout:     s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.getString(keyEmbedBaseURL, s.configStore.GetString(keyBaseURL)),
			Timeout:  s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout),
		},
		Index: domain.IndexSettings{
			Dir:        s.getString(keyIndexDir, defaults.Index.Dir),
			Collection: s.getString(keyIndexColl, defaults.Index.Collection),
			Backend:    domain.VectorBackend(s.getString(keyIndexBackend, string(defaults.Index.Backend))),
			Rebuild:    s.getBool(keyIndexRebuild, false),
		},
		Chunk: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunk.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunk.Overlap),
		},
		APIKeyEnv:    s.getString(keyAPIKeyEnv, defaults.APIKeyEnv),
		CatalogPath:  s.getString(keyCatalogPath, defaults.CatalogPath),
		RetrievalK:   s.getInt(keyRetrievalK, defaults.RetrievalK),
		IntentMode:   domain.IntentMode(s.getString(keyIntentMode, string(defaults.IntentMode))),
		CartBackend:  domain.CartBackend(s.getString(keyCartBackend, string(defaults.CartBackend))),
		RateLimitRPS: s.getFloat(keyRateLimitRPS, defaults.RateLimitRPS),
		ServerAddr:   s.getString(keyServerAddr, defaults.ServerAddr),
	}

	// One credential serves both providers.
	apiKey := s.getenv(settings.APIKeyEnv)
	if settings.LLM.Provider.RequiresAPIKey() {
		settings.LLM.APIKey = apiKey
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		settings.Embedding.APIKey = apiKey
	}

	return settings, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if def.check != nil && !def.check(value) {
		return fmt.Errorf("%w: invalid value %q for %s", domain.ErrInvalidInput, value, key)
	}

	var typed any
	switch def.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %w", domain.ErrInvalidInput, key, err)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number: %w", domain.ErrInvalidInput, key, err)
		}
		typed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false: %w", domain.ErrInvalidInput, key, err)
		}
		typed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s expects a duration: %w", domain.ErrInvalidInput, key, err)
		}
		typed = value
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns the recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.name
	}
	return keys
}

func lookupKey(name string) (settingKey, bool) {
	for _, k := range settingKeys {
		if k.name == name {
			return k, true
		}
	}
	return settingKey{}, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
