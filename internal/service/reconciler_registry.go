package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
)

// ReconcilerRegistry owns one StockReconciler per browsing session, created
// lazily alongside the session's cart store.
type ReconcilerRegistry struct {
	mu          sync.Mutex
	reconcilers map[string]*StockReconciler
	carts       *cart.Manager
	fetcher     ProductFetcher
	logger      *zap.Logger
}

// NewReconcilerRegistry creates a registry bound to the cart manager
func NewReconcilerRegistry(carts *cart.Manager, fetcher ProductFetcher, logger *zap.Logger) *ReconcilerRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcilerRegistry{
		reconcilers: make(map[string]*StockReconciler),
		carts:       carts,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// For returns the reconciler for a session, creating it on first access
func (g *ReconcilerRegistry) For(ctx context.Context, sessionID string) *StockReconciler {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.reconcilers[sessionID]; ok {
		return r
	}

	store := g.carts.Get(ctx, sessionID)
	r := NewStockReconciler(store, g.fetcher, g.logger)
	g.reconcilers[sessionID] = r
	return r
}

// Drop closes and removes a session's reconciler
func (g *ReconcilerRegistry) Drop(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.reconcilers[sessionID]; ok {
		r.Close()
		delete(g.reconcilers, sessionID)
	}
}
