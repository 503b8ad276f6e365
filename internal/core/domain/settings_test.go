package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderGemini, true},
		{AIProviderOpenAI, true},
		{AIProviderOllama, true},
		{AIProvider("anthropic"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAllAIProviders(t *testing.T) {
	providers := AllAIProviders()
	assert.Equal(t, []AIProvider{AIProviderGemini, AIProviderOpenAI, AIProviderOllama}, providers)
	for _, p := range providers {
		assert.True(t, p.IsValid())
		assert.NotEmpty(t, DefaultLLMModels()[p])
		assert.NotEmpty(t, DefaultEmbeddingModels()[p])
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
}

func TestAIProvider_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, GeminiOpenAIBaseURL, AIProviderGemini.DefaultBaseURL())
	assert.Equal(t, "http://localhost:11434", AIProviderOllama.DefaultBaseURL())
	assert.Empty(t, AIProvider("bogus").DefaultBaseURL())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Google Gemini", AIProviderGemini.Description())
	assert.Equal(t, unknownDescription, AIProvider("bogus").Description())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, AIProviderGemini, s.LLM.Provider)
	assert.Equal(t, "gemini-2.0-flash", s.LLM.Model)
	assert.InDelta(t, 0.3, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 500, s.LLM.MaxTokens)
	assert.Equal(t, "gemini-embedding-001", s.Embedding.Model)
	assert.Equal(t, "./chroma_books_db", s.Index.Dir)
	assert.Equal(t, 1000, s.Chunk.Size)
	assert.Equal(t, 100, s.Chunk.Overlap)
	assert.Equal(t, 10, s.RetrievalK)
	assert.Equal(t, "GOOGLE_API_KEY", s.APIKeyEnv)
	assert.Equal(t, IntentModeKeyword, s.IntentMode)
	assert.Equal(t, CartBackendMemory, s.CartBackend)
	assert.Equal(t, "127.0.0.1:1616", s.ServerAddr)
}

func TestSettings_Validate(t *testing.T) {
	t.Run("missing credential", func(t *testing.T) {
		s := DefaultSettings()
		err := s.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})

	t.Run("with credential", func(t *testing.T) {
		s := DefaultSettings()
		s.LLM.APIKey = "k"
		s.Embedding.APIKey = "k"
		assert.NoError(t, s.Validate())
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		s := DefaultSettings()
		s.LLM.Provider = AIProviderOllama
		s.Embedding.Provider = AIProviderOllama
		assert.NoError(t, s.Validate())
	})

	t.Run("unknown intent mode", func(t *testing.T) {
		s := DefaultSettings()
		s.LLM.Provider = AIProviderOllama
		s.Embedding.Provider = AIProviderOllama
		s.IntentMode = "magic"
		assert.ErrorIs(t, s.Validate(), ErrConfiguration)
	})

	t.Run("unknown cart backend", func(t *testing.T) {
		s := DefaultSettings()
		s.LLM.Provider = AIProviderOllama
		s.Embedding.Provider = AIProviderOllama
		s.CartBackend = "redis"
		assert.ErrorIs(t, s.Validate(), ErrConfiguration)
	})
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{Provider: AIProviderGemini, Model: "m"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGemini, Model: "m", APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama, Model: "m"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
}
