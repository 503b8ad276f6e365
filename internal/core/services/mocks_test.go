package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/bookbot/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/bookbot/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// --- Mock implementations ---

const fakeDims = 64

// fakeEmbedder is a deterministic bag-of-words embedder: each word is
// hashed into one of fakeDims buckets.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return bagOfWords(text), nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int { return fakeDims }
func (e *fakeEmbedder) ModelName() string { return "fake" }
func (e *fakeEmbedder) Ping(context.Context) error { return nil }
func (e *fakeEmbedder) Close() error { return nil }

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func bagOfWords(text string) []float32 {
	vec := make([]float32, fakeDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%fakeDims]++
	}
	var sum float64
	for _, x := range vec {
		sum += float64(x * x)
	}
	if sum > 0 {
		n := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec
}

// mockLLM answers with a scripted function and records requests.
type mockLLM struct {
	mu       sync.Mutex
	respond  func(messages []driven.ChatMessage) string
	err      error
	requests [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, messages)
	m.options = append(m.options, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.respond(messages), nil
}

func (m *mockLLM) ModelName() string { return "scripted" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// scriptedByQuery maps the user message to a completion.
func scriptedByQuery(answers map[string]string) func([]driven.ChatMessage) string {
	return func(messages []driven.ChatMessage) string {
		query := messages[len(messages)-1].Content
		if a, ok := answers[query]; ok {
			return a
		}
		return "Bu konuda bilgim yok."
	}
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

func newPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptChatSystem:       "Sen bir kitapçı asistanısın.\n\n{context}",
		driven.PromptStructuredIntent: "JSON döndür.",
	}}
}

// mockCatalog returns fixed books.
type mockCatalog struct {
	books []domain.BookRecord
	err   error
}

func (m *mockCatalog) Load(context.Context) ([]domain.BookRecord, error) {
	return m.books, m.err
}

func (m *mockCatalog) Path() string { return "test.json" }

// wholeSplitter returns the text as a single chunk.
type wholeSplitter struct{}

func (wholeSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}

// failingCartStore fails every operation.
type failingCartStore struct{}

var errStore = errors.New("store down")

func (failingCartStore) Get(context.Context, string) (domain.Cart, error) { return nil, errStore }
func (failingCartStore) Update(context.Context, string, func(domain.Cart) (domain.Cart, error)) error {
	return errStore
}
func (failingCartStore) Sessions(context.Context) ([]string, error) { return nil, errStore }
func (failingCartStore) Close() error { return nil }

// --- Fixtures ---

func testCatalog() []domain.BookRecord {
	return []domain.BookRecord{
		{ID: "1", Title: "Dune", Author: "Frank Herbert", Genre: "Bilim Kurgu",
			Summary: "Çöl gezegeni Arrakis üzerinde geçen destansı bir hikaye.", Price: 150, Stock: 5},
		{ID: "2", Title: "Simyacı", Author: "Paulo Coelho", Genre: "Roman",
			Summary: "Hazinesinin peşine düşen bir çobanın yolculuğu.", Price: 120, Stock: 10},
		{ID: "3", Title: "Suç ve Ceza", Author: "Fyodor Dostoyevski", Genre: "Klasik",
			Summary: "Raskolnikov'un işlediği cinayet ve vicdan azabı.", Price: 85.5, Stock: 3},
		{ID: "4", Title: "Körlük", Author: "José Saramago", Genre: "Roman",
			Summary: "Bir şehri saran beyaz körlük salgını.", Price: 95, Stock: 7},
	}
}

type fixture struct {
	embedder  *fakeEmbedder
	index     *vectormemory.Index
	carts     *memory.CartStore
	retriever *Retriever
	cart      *CartService
}

// newFixture indexes the test catalog into a memory index.
func newFixture(books []domain.BookRecord) *fixture {
	f := &fixture{
		embedder: &fakeEmbedder{},
		index:    vectormemory.NewIndex(),
		carts:    memory.NewCartStore(),
	}
	indexer := NewIndexerService(&mockCatalog{books: books}, wholeSplitter{}, f.embedder, f.index, 0)
	if _, err := indexer.Build(context.Background(), false); err != nil {
		panic(err)
	}
	f.retriever = NewRetriever(f.embedder, f.index, 0)
	f.cart = NewCartService(f.carts, f.retriever)
	return f
}
