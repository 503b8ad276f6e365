package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingServer answers each input i with the vector [i, len(input)],
// listing data in reverse order.
func embeddingServer(t *testing.T, requests *[]embeddingsRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*requests = append(*requests, req)

		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i), float32(len(req.Input[i]))},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-004"})
	require.NoError(t, err)
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, "text-embedding-004", svc.ModelName())

	unknown, err := NewEmbeddingService(Config{APIKey: "k", Model: "custom"})
	require.NoError(t, err)
	assert.Equal(t, 0, unknown.Dimensions())
}

func TestEmbedBatch_SplitsAndOrders(t *testing.T) {
	var requests []embeddingsRequest
	srv := embeddingServer(t, &requests)

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "custom", MaxBatch: 2})
	require.NoError(t, err)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Equal(t, []string{"a", "bb"}, requests[0].Input)
	assert.Equal(t, []string{"ccc"}, requests[1].Input)
	assert.Equal(t, [][]float32{{0, 1}, {1, 2}, {0, 3}}, vectors)
	assert.Equal(t, 2, svc.Dimensions())
}

func TestEmbed(t *testing.T) {
	var requests []embeddingsRequest
	srv := embeddingServer(t, &requests)

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	v, err := svc.Embed(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 4}, v)
	assert.Equal(t, DefaultModel, requests[0].Model)
}

func TestEmbedBatch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model"}}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL, Name: "gemini"})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "gemini")
}
