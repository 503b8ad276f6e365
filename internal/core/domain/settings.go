package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is Google Gemini through its OpenAI-compatible endpoint.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// GeminiOpenAIBaseURL is Gemini's OpenAI-compatible API root.
const GeminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// AllAIProviders returns the supported providers in menu order.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderGemini, AIProviderOpenAI, AIProviderOllama}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI
}

// DefaultBaseURL returns the API root used when none is configured.
func (p AIProvider) DefaultBaseURL() string {
	switch p {
	case AIProviderGemini:
		return GeminiOpenAIBaseURL
	case AIProviderOpenAI:
		return "https://api.openai.com/v1"
	case AIProviderOllama:
		return "http://localhost:11434"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini"
	case AIProviderOpenAI:
		return "OpenAI"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// IntentMode selects how cart commands are recognised in completions.
type IntentMode string

// Available intent modes.
const (
	// IntentModeKeyword scans free text for intent keywords.
	IntentModeKeyword IntentMode = "keyword"

	// IntentModeStructured asks the model for a JSON object with an intent tag.
	IntentModeStructured IntentMode = "structured"
)

// IsValid returns true if the intent mode is recognised.
func (m IntentMode) IsValid() bool {
	return m == IntentModeKeyword || m == IntentModeStructured
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendChromem VectorBackend = "chromem"
	VectorBackendMemory  VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendChromem || b == VectorBackendMemory
}

// CartBackend selects where carts are kept.
type CartBackend string

// Available cart backends.
const (
	CartBackendMemory CartBackend = "memory"
	CartBackendSQLite CartBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b CartBackend) IsValid() bool {
	return b == CartBackendMemory || b == CartBackendSQLite
}

// LLMSettings configures the completion provider.
type LLMSettings struct {
	Provider AIProvider
	Model    string

	// BaseURL overrides the provider's default API root.
	BaseURL string

	// APIKey is resolved from the environment, never stored in the config file.
	APIKey string

	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// IsConfigured returns true if LLM settings are complete.
func (s LLMSettings) IsConfigured() bool {
	if !s.Provider.IsValid() || s.Model == "" {
		return false
	}
	return !s.Provider.RequiresAPIKey() || s.APIKey != ""
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// IsConfigured returns true if embedding settings are complete.
func (s EmbeddingSettings) IsConfigured() bool {
	if !s.Provider.IsValid() || s.Model == "" {
		return false
	}
	return !s.Provider.RequiresAPIKey() || s.APIKey != ""
}

// IndexSettings configures the vector index.
type IndexSettings struct {
	// Dir is the persistence directory of the chromem backend.
	Dir        string
	Collection string
	Backend    VectorBackend

	// Rebuild forces re-indexing even when the index is populated.
	Rebuild bool
}

// ChunkSettings configures the chunker, in runes.
type ChunkSettings struct {
	Size    int
	Overlap int
}

// Settings is the resolved application configuration.
type Settings struct {
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	Chunk     ChunkSettings

	// APIKeyEnv names the environment variable holding the provider credential.
	APIKeyEnv string

	CatalogPath string
	RetrievalK  int
	IntentMode  IntentMode
	CartBackend CartBackend

	// RateLimitRPS caps provider calls per second. Zero disables the limit.
	RateLimitRPS float64

	ServerAddr string
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{
			Provider:    AIProviderGemini,
			Model:       "gemini-2.0-flash",
			Temperature: 0.3,
			MaxTokens:   500,
			Timeout:     120 * time.Second,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    "gemini-embedding-001",
			Timeout:  60 * time.Second,
		},
		Index: IndexSettings{
			Dir:        "./chroma_books_db",
			Collection: "books",
			Backend:    VectorBackendChromem,
		},
		Chunk: ChunkSettings{
			Size:    1000,
			Overlap: 100,
		},
		APIKeyEnv:   "GOOGLE_API_KEY",
		CatalogPath: "kitaplar_dataset.json",
		RetrievalK:  10,
		IntentMode:  IntentModeKeyword,
		CartBackend: CartBackendMemory,
		ServerAddr:  "127.0.0.1:1616",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-2.0-flash",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderOllama: "llama3.2",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-embedding-001",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
	}
}

// Validate checks that providers and backends are known and that
// providers needing a credential have one.
func (s Settings) Validate() error {
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrConfiguration, s.LLM.Provider)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrConfiguration, s.Embedding.Provider)
	}
	if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		return fmt.Errorf("%w: %s requires an API key, set %s", ErrConfiguration, s.LLM.Provider, s.APIKeyEnv)
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return fmt.Errorf("%w: %s requires an API key, set %s", ErrConfiguration, s.Embedding.Provider, s.APIKeyEnv)
	}
	if !s.IntentMode.IsValid() {
		return fmt.Errorf("%w: unknown intent mode %q", ErrConfiguration, s.IntentMode)
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrConfiguration, s.Index.Backend)
	}
	if !s.CartBackend.IsValid() {
		return fmt.Errorf("%w: unknown cart backend %q", ErrConfiguration, s.CartBackend)
	}
	if s.Chunk.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrConfiguration)
	}
	return nil
}
