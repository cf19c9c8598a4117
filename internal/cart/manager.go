package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

// Manager owns the per-session cart stores and writes them through to redis
// so a cart survives a server restart. Redis being down degrades to
// in-memory carts; it never fails a cart mutation.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	client  *redis.Client
	baseTTL time.Duration
	logger  *zap.Logger
}

// NewManager creates a cart manager. client may be nil for in-memory-only
// operation (tests).
func NewManager(client *redis.Client, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		stores:  make(map[string]*Store),
		client:  client,
		baseTTL: 24 * time.Hour,
		logger:  logger,
	}
}

// Get returns the cart store for a session, hydrating it from redis on first
// access.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	if store, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return store
	}

	store := NewStore()
	m.stores[sessionID] = store
	m.mu.Unlock()

	if items, err := m.load(ctx, sessionID); err != nil {
		m.logger.Warn("Failed to load persisted cart", zap.String("session_id", sessionID), zap.Error(err))
	} else if len(items) > 0 {
		store.replace(items)
	}

	store.SetOnChange(func(items []domain.CartItem) {
		m.persist(sessionID, items)
	})
	return store
}

// Drop discards a session's store and its persisted copy
func (m *Manager) Drop(ctx context.Context, sessionID string) {
	m.mu.Lock()
	delete(m.stores, sessionID)
	m.mu.Unlock()

	if m.client == nil {
		return
	}
	if err := m.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		m.logger.Warn("Failed to delete persisted cart", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (m *Manager) load(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	if m.client == nil {
		return nil, nil
	}

	data, err := m.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return items, nil
}

func (m *Manager) persist(sessionID string, items []domain.CartItem) {
	if m.client == nil {
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		m.logger.Error("Failed to marshal cart", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	if err := m.client.Set(ctx, cartKey(sessionID), data, m.baseTTL+jitter).Err(); err != nil {
		m.logger.Warn("Failed to persist cart", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
