package mcp

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	reply   domain.Reply
	err     error
	session string
	query   string
}

func (m *mockChatService) Ask(_ context.Context, session, query string) (domain.Reply, error) {
	m.session = session
	m.query = query
	return m.reply, m.err
}

// mockCartService keeps carts in a map and records the last call.
type mockCartService struct {
	carts    map[string]domain.Cart
	lastCall string
	err      error
}

func newMockCart() *mockCartService {
	return &mockCartService{carts: make(map[string]domain.Cart)}
}

func (m *mockCartService) Add(_ context.Context, session, fragment string) (string, error) {
	m.lastCall = "add:" + session + ":" + fragment
	if m.err != nil {
		return "", m.err
	}
	m.carts[session] = append(m.carts[session], domain.CartItem{Title: strings.ToLower(fragment), Price: 150})
	return fragment + " sepete eklendi", nil
}

func (m *mockCartService) Remove(_ context.Context, session, fragment string) (string, error) {
	m.lastCall = "remove:" + session + ":" + fragment
	m.carts[session] = nil
	return fragment + " sepetten çıkarıldı", m.err
}

func (m *mockCartService) Show(_ context.Context, session string) (string, error) {
	m.lastCall = "show:" + session
	return "sepet", m.err
}

func (m *mockCartService) Clear(_ context.Context, session string) (string, error) {
	m.lastCall = "clear:" + session
	m.carts[session] = nil
	return "Sepet temizlendi.", m.err
}

func (m *mockCartService) Total(_ context.Context, session string) (string, error) {
	m.lastCall = "total:" + session
	return "toplam", m.err
}

func (m *mockCartService) Items(_ context.Context, session string) (domain.Cart, error) {
	return m.carts[session], nil
}

func (m *mockCartService) Sessions(context.Context) ([]string, error) {
	sessions := make([]string, 0, len(m.carts))
	for session, cart := range m.carts {
		if len(cart) > 0 {
			sessions = append(sessions, session)
		}
	}
	sort.Strings(sessions)
	return sessions, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	count int
	err   error
}

func (m *mockIndexService) Build(context.Context, bool) (domain.IndexReport, error) {
	return domain.IndexReport{}, m.err
}

func (m *mockIndexService) Count(context.Context) (int, error) {
	return m.count, m.err
}
