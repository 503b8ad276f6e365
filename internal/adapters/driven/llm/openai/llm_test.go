package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(LLMConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "gemini-2.0-flash",
		Name:    "gemini",
	})
	require.NoError(t, err)
	return svc
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{Name: "gemini"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "gemini")
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, "openai", svc.name)
	assert.NoError(t, svc.Close())
}

func TestChat_SendsMessagesAndOptions(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "Dune, 150 TL.")
	})

	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "Sen bir kitapçı asistanısın."},
		{Role: driven.RoleUser, Content: "Dune ne kadar?"},
	}, driven.ChatOptions{MaxTokens: 500, Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, "Dune, 150 TL.", reply)
	assert.Equal(t, "gemini-2.0-flash", got["model"])
	assert.EqualValues(t, 500, got["max_tokens"])
	assert.InDelta(t, 0.3, got["temperature"], 1e-6)
	assert.NotContains(t, got, "response_format")

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Dune ne kadar?", msgs[1].(map[string]any)["content"])
}

func TestChat_SendsZeroTemperature(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "tamam")
	})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "x"}},
		driven.ChatOptions{Temperature: 0})

	require.NoError(t, err)
	require.Contains(t, got, "temperature")
	assert.InDelta(t, 0, got["temperature"], 1e-6)
}

func TestChat_StructuredOutput(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, `{"intent":"kitap_ekle","book":"Dune","answer":""}`)
	})

	schema := &driven.ResponseSchema{
		Name: "bookstore_reply",
		Properties: map[string]driven.SchemaProperty{
			"intent": {Enum: []string{"none", "kitap_ekle"}},
			"book":   {Description: "book title"},
		},
		Required: []string{"intent", "book"},
	}
	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleUser, Content: "Dune ekle"},
	}, driven.ChatOptions{Schema: schema})
	require.NoError(t, err)
	assert.Contains(t, reply, "kitap_ekle")

	format := got["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "bookstore_reply", js["name"])
	assert.Equal(t, true, js["strict"])

	body := js["schema"].(map[string]any)
	assert.Equal(t, "object", body["type"])
	assert.Equal(t, false, body["additionalProperties"])
	props := body["properties"].(map[string]any)
	intent := props["intent"].(map[string]any)
	assert.Equal(t, "string", intent["type"])
	assert.Equal(t, []any{"none", "kitap_ekle"}, intent["enum"])
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"unauthorised", http.StatusUnauthorized, false},
		{"server error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
			})

			_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrProvider)
			assert.Equal(t, tt.rateLimited, errors.Is(err, domain.ErrRateLimited))
			assert.Contains(t, err.Error(), "gemini")
		})
	}
}

func TestChat_NoChoices(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gemini-2.0-flash","object":"model"}]}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Failure(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})

	err := svc.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrProvider)
}
