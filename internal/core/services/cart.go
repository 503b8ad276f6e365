package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
	"github.com/custodia-labs/bookbot/internal/logger"
)

// Ensure CartService implements the interface.
var _ driving.CartService = (*CartService)(nil)

// Cart messages.
const (
	msgAdded      = "✅ '%s' sepete eklendi."
	msgNotFound   = "❌ '%s' adlı kitap bulunamadı."
	msgRemoved    = "❌ '%s' sepetten çıkarıldı."
	msgNotInCart  = "🔍 '%s' adlı kitap sepette bulunamadı."
	msgEmpty      = "🛒 Sepet boş."
	msgListHeader = "📦 Sepetteki Kitaplar:"
	msgListLine   = "%d. %s - %s TL"
	msgCleared    = "🧹 Sepet temizlendi."
	msgTotal      = "💰 Toplam Tutar: %s TL"
)

// CartService runs cart commands against per-session carts.
type CartService struct {
	store     driven.CartStore
	retriever *Retriever
}

// NewCartService creates a cart service.
func NewCartService(store driven.CartStore, retriever *Retriever) *CartService {
	return &CartService{
		store:     store,
		retriever: retriever,
	}
}

// Add retrieves candidates for the fragment and appends the first one whose
// title contains it.
func (s *CartService) Add(ctx context.Context, session, fragment string) (string, error) {
	session = domain.NormaliseSession(session)
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	logger.Debug("Cart add: session=%s fragment=%q", session, fragment)

	if fragment == "" {
		return fmt.Sprintf(msgNotFound, fragment), nil
	}

	candidates, err := s.retriever.retrieveOrEmpty(ctx, fragment, 0)
	if err != nil {
		return "", fmt.Errorf("add to cart: %w", err)
	}

	var match *domain.CartItem
	for i := range candidates {
		if strings.Contains(strings.ToLower(candidates[i].Metadata.Title), fragment) {
			match = &candidates[i].Metadata
			break
		}
	}
	if match == nil {
		logger.Debug("No candidate title contains %q among %d hits", fragment, len(candidates))
		return fmt.Sprintf(msgNotFound, fragment), nil
	}

	item := *match
	err = s.store.Update(ctx, session, func(c domain.Cart) (domain.Cart, error) {
		return append(c, item), nil
	})
	if err != nil {
		return "", fmt.Errorf("add to cart: %w", err)
	}
	return fmt.Sprintf(msgAdded, item.Title), nil
}

// Remove drops the first item whose title contains the fragment.
func (s *CartService) Remove(ctx context.Context, session, fragment string) (string, error) {
	session = domain.NormaliseSession(session)
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	logger.Debug("Cart remove: session=%s fragment=%q", session, fragment)

	if fragment == "" {
		return fmt.Sprintf(msgNotInCart, fragment), nil
	}

	var removed string
	err := s.store.Update(ctx, session, func(c domain.Cart) (domain.Cart, error) {
		for i, item := range c {
			if strings.Contains(strings.ToLower(item.Title), fragment) {
				removed = item.Title
				return append(c[:i:i], c[i+1:]...), nil
			}
		}
		return c, nil
	})
	if err != nil {
		return "", fmt.Errorf("remove from cart: %w", err)
	}

	if removed == "" {
		return fmt.Sprintf(msgNotInCart, fragment), nil
	}
	return fmt.Sprintf(msgRemoved, removed), nil
}

// Show lists the cart in insertion order.
func (s *CartService) Show(ctx context.Context, session string) (string, error) {
	cart, err := s.Items(ctx, session)
	if err != nil {
		return "", err
	}
	return FormatCart(cart), nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, session string) (string, error) {
	session = domain.NormaliseSession(session)
	err := s.store.Update(ctx, session, func(domain.Cart) (domain.Cart, error) {
		return domain.Cart{}, nil
	})
	if err != nil {
		return "", fmt.Errorf("clear cart: %w", err)
	}
	return msgCleared, nil
}

// Total reports the summed price of the cart.
func (s *CartService) Total(ctx context.Context, session string) (string, error) {
	cart, err := s.Items(ctx, session)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(msgTotal, domain.FormatPrice(cart.Total())), nil
}

// Items returns the session's cart.
func (s *CartService) Items(ctx context.Context, session string) (domain.Cart, error) {
	cart, err := s.store.Get(ctx, domain.NormaliseSession(session))
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// FormatCart renders the listing shown by Show.
func FormatCart(cart domain.Cart) string {
	if len(cart) == 0 {
		return msgEmpty
	}
	lines := make([]string, 0, len(cart)+1)
	lines = append(lines, msgListHeader)
	for i, item := range cart {
		lines = append(lines, fmt.Sprintf(msgListLine, i+1, item.Title, domain.FormatPrice(item.Price)))
	}
	return strings.Join(lines, "\n")
}

// Sessions lists the sessions that have a stored cart.
func (s *CartService) Sessions(ctx context.Context) ([]string, error) {
	sessions, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	return sessions, nil
}
