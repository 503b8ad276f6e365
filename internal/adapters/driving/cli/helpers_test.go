package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// mockChatService answers with a canned reply and records the calls.
type mockChatService struct {
	mu      sync.Mutex
	reply   func(query string) domain.Reply
	err     error
	queries []string
	session string
}

func (m *mockChatService) Ask(_ context.Context, session, query string) (domain.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.session = session
	if m.err != nil {
		return domain.Reply{}, m.err
	}
	if m.reply != nil {
		return m.reply(query), nil
	}
	return domain.Reply{Text: "cevap: " + query}, nil
}

// mockCartService keeps carts in a map keyed by session.
type mockCartService struct {
	carts map[string]domain.Cart
	err   error
}

func newMockCartService() *mockCartService {
	return &mockCartService{carts: make(map[string]domain.Cart)}
}

func (m *mockCartService) Add(_ context.Context, session, fragment string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.carts[session] = append(m.carts[session], domain.CartItem{Title: strings.ToLower(fragment), Price: 150})
	return fmt.Sprintf("%s sepete eklendi.", strings.ToLower(fragment)), nil
}

func (m *mockCartService) Remove(_ context.Context, session, fragment string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.carts[session] = nil
	return fmt.Sprintf("%s sepetten çıkarıldı.", fragment), nil
}

func (m *mockCartService) Show(_ context.Context, session string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if len(m.carts[session]) == 0 {
		return "Sepetiniz boş.", nil
	}
	return fmt.Sprintf("Sepetinizde %d kitap var.", len(m.carts[session])), nil
}

func (m *mockCartService) Clear(_ context.Context, session string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.carts[session] = nil
	return "Sepet temizlendi.", nil
}

func (m *mockCartService) Total(_ context.Context, session string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("Toplam: %s TL", domain.FormatPrice(m.carts[session].Total())), nil
}

func (m *mockCartService) Items(_ context.Context, session string) (domain.Cart, error) {
	return m.carts[session], m.err
}

func (m *mockCartService) Sessions(context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var sessions []string
	for s, cart := range m.carts {
		if len(cart) > 0 {
			sessions = append(sessions, s)
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}

// mockIndexService records builds.
type mockIndexService struct {
	mu       sync.Mutex
	report   domain.IndexReport
	err      error
	count    int
	countErr error
	builds   []bool
}

func (m *mockIndexService) Build(_ context.Context, rebuild bool) (domain.IndexReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, rebuild)
	return m.report, m.err
}

func (m *mockIndexService) Count(context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockIndexService) Builds() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.builds...)
}

// mockSettingsService holds raw values over the default settings.
type mockSettingsService struct {
	values map[string]string
	apiKey string
	setErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{values: make(map[string]string)}
}

func (m *mockSettingsService) Get() (domain.Settings, error) {
	s := domain.DefaultSettings()
	if v, ok := m.values["provider.llm"]; ok {
		s.LLM.Provider = domain.AIProvider(v)
	}
	if v, ok := m.values["llm.model"]; ok {
		s.LLM.Model = v
	}
	if v, ok := m.values["provider.embedding"]; ok {
		s.Embedding.Provider = domain.AIProvider(v)
	}
	if v, ok := m.values["embedding.model"]; ok {
		s.Embedding.Model = v
	}
	if v, ok := m.values["intent.mode"]; ok {
		s.IntentMode = domain.IntentMode(v)
	}
	if v, ok := m.values["catalog.path"]; ok {
		s.CatalogPath = v
	}
	if m.values["index.rebuild"] == "true" {
		s.Index.Rebuild = true
	}
	if s.LLM.Provider.RequiresAPIKey() {
		s.LLM.APIKey = m.apiKey
	}
	if s.Embedding.Provider.RequiresAPIKey() {
		s.Embedding.APIKey = m.apiKey
	}
	return s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"provider.llm", "llm.model", "intent.mode"}
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	chat     *mockChatService
	cart     *mockCartService
	index    *mockIndexService
	settings *mockSettingsService
}

// setupTestServices installs mocks and returns a cleanup function.
func setupTestServices() func() {
	cleanup, _ := setupTestServicesWith()
	return cleanup
}

// setupTestServicesWith installs mocks and returns them for inspection.
func setupTestServicesWith() (func(), *testServices) {
	restore := clearServices()

	ts := &testServices{
		chat:     &mockChatService{},
		cart:     newMockCartService(),
		index:    &mockIndexService{report: domain.IndexReport{Books: 3, Chunks: 7}, count: 7},
		settings: newMockSettingsService(),
	}
	ts.settings.apiKey = "test-key-1234567890"

	chatService = ts.chat
	cartService = ts.cart
	indexService = ts.index
	settingsService = ts.settings

	return restore, ts
}

// clearServices removes every service and returns a function restoring them.
func clearServices() func() {
	oldSettings, oldChat, oldCart, oldIndex := settingsService, chatService, cartService, indexService
	oldClose, oldBootstrap, oldIndexed := closeServices, bootstrap, indexed

	settingsService, chatService, cartService, indexService = nil, nil, nil, nil
	closeServices, bootstrap, indexed = nil, nil, false

	return func() {
		settingsService, chatService, cartService, indexService = oldSettings, oldChat, oldCart, oldIndex
		closeServices, bootstrap, indexed = oldClose, oldBootstrap, oldIndexed
		resetFlags(rootCmd)
		resetContexts(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetContexts drops contexts left behind by ExecuteContext.
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(context.Background())
	for _, sub := range cmd.Commands() {
		resetContexts(sub)
	}
}

// resetFlags restores every changed flag so state does not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
