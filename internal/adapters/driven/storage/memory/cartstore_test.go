package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookbot/internal/core/domain"
)

func appendItem(item domain.CartItem) func(domain.Cart) (domain.Cart, error) {
	return func(c domain.Cart) (domain.Cart, error) {
		return append(c, item), nil
	}
}

func TestCartStore_GetUnknown(t *testing.T) {
	store := NewCartStore()
	cart, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartStore_UpdateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()

	require.NoError(t, store.Update(ctx, "s1", appendItem(domain.CartItem{Title: "dune", Price: 150})))
	require.NoError(t, store.Update(ctx, "s1", appendItem(domain.CartItem{Title: "dune", Price: 150})))

	cart, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, cart, 2)
}

func TestCartStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()

	require.NoError(t, store.Update(ctx, "a", appendItem(domain.CartItem{Title: "dune"})))

	cart, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, cart)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sessions)
}

func TestCartStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()
	require.NoError(t, store.Update(ctx, "s", appendItem(domain.CartItem{Title: "dune"})))

	cart, err := store.Get(ctx, "s")
	require.NoError(t, err)
	cart[0].Title = "mutated"

	again, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "dune", again[0].Title)
}

func TestCartStore_UpdateErrorLeavesCart(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()
	require.NoError(t, store.Update(ctx, "s", appendItem(domain.CartItem{Title: "dune"})))

	boom := errors.New("boom")
	err := store.Update(ctx, "s", func(domain.Cart) (domain.Cart, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	cart, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestCartStore_UpdateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewCartStore().Update(ctx, "s", appendItem(domain.CartItem{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCartStore_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Update(ctx, domain.DefaultSession, appendItem(domain.CartItem{Price: 1})))
		}()
	}
	wg.Wait()

	cart, err := store.Get(ctx, domain.DefaultSession)
	require.NoError(t, err)
	assert.Len(t, cart, 100)
	assert.InDelta(t, 100.0, cart.Total(), 1e-9)
	assert.NoError(t, store.Close())
}

func TestCartStore_ClearDropsSession(t *testing.T) {
	ctx := context.Background()
	store := NewCartStore()
	require.NoError(t, store.Update(ctx, "s", appendItem(domain.CartItem{Title: "dune"})))

	require.NoError(t, store.Update(ctx, "s", func(domain.Cart) (domain.Cart, error) {
		return nil, nil
	}))

	assert.NotContains(t, store.carts, "s")
	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
