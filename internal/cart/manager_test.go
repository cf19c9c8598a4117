package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func newRedisManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(client, nil), mr
}

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	m := NewManager(nil, nil)
	ctx := context.Background()

	a := m.Get(ctx, "sess-1")
	b := m.Get(ctx, "sess-1")
	other := m.Get(ctx, "sess-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestManagerPersistsMutations(t *testing.T) {
	m, mr := newRedisManager(t)
	ctx := context.Background()

	store := m.Get(ctx, "sess-1")
	store.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Price: 10, Quantity: 2})

	require.Eventually(t, func() bool {
		return mr.Exists("cart:sess-1")
	}, time.Second, 5*time.Millisecond)

	data, err := mr.Get("cart:sess-1")
	require.NoError(t, err)

	var items []domain.CartItem
	require.NoError(t, json.Unmarshal([]byte(data), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestManagerHydratesFromRedis(t *testing.T) {
	m, mr := newRedisManager(t)
	ctx := context.Background()

	persisted, err := json.Marshal([]domain.CartItem{
		{ProductID: "p1", Name: "Widget", Price: 10, Quantity: 3},
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set("cart:sess-1", string(persisted)))

	store := m.Get(ctx, "sess-1")

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestManagerDropRemovesPersistedCart(t *testing.T) {
	m, mr := newRedisManager(t)
	ctx := context.Background()

	store := m.Get(ctx, "sess-1")
	store.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})

	require.Eventually(t, func() bool {
		return mr.Exists("cart:sess-1")
	}, time.Second, 5*time.Millisecond)

	m.Drop(ctx, "sess-1")
	assert.False(t, mr.Exists("cart:sess-1"))

	// A fresh Get after Drop starts empty
	assert.Empty(t, m.Get(ctx, "sess-1").Items())
}

func TestManagerSurvivesRedisOutage(t *testing.T) {
	m, mr := newRedisManager(t)
	ctx := context.Background()
	mr.Close()

	store := m.Get(ctx, "sess-1")
	store.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})

	assert.Equal(t, 1, store.TotalItems(), "mutations must not fail when redis is down")
}
