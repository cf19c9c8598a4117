package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
)

// ProductFetcher is the slice of the CMS client the reconciler and checkout
// validator depend on.
type ProductFetcher interface {
	ProductsByIDs(ctx context.Context, ids []string) ([]domain.ProductSnapshot, error)
}

// StockSnapshot is a point-in-time view of the reconciled stock state used to
// gate cart and checkout UI actions.
type StockSnapshot struct {
	Stock          map[string]domain.StockInfo `json:"stock"`
	IsLoading      bool                        `json:"isLoading"`
	HasStockIssues bool                        `json:"hasStockIssues"`
}

// StockReconciler keeps a session cart's stock state in sync with the CMS.
// Every cart mutation triggers a batched re-fetch of the referenced products;
// each fetch carries a monotonically increasing token and only the latest
// token may apply its result, so a stale response can never overwrite the
// state computed for a newer cart.
type StockReconciler struct {
	store   *cart.Store
	fetcher ProductFetcher
	logger  *zap.Logger

	mu          sync.Mutex
	stock       map[string]domain.StockInfo
	latestToken uint64
	loading     bool

	subID int
	ch    <-chan struct{}
	done  chan struct{}
}

// NewStockReconciler creates a reconciler bound to one cart store and starts
// watching it. It performs an initial fetch so the snapshot is populated for
// carts hydrated from persistence.
func NewStockReconciler(store *cart.Store, fetcher ProductFetcher, logger *zap.Logger) *StockReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &StockReconciler{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
		stock:   make(map[string]domain.StockInfo),
		done:    make(chan struct{}),
	}
	r.subID, r.ch = store.Subscribe()
	go r.watch()
	r.Refetch()
	return r
}

// Close detaches the reconciler from its cart store
func (r *StockReconciler) Close() {
	r.store.Unsubscribe(r.subID)
	close(r.done)
}

// Snapshot returns the current reconciled state. The stock map is a copy.
func (r *StockReconciler) Snapshot() StockSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	stock := make(map[string]domain.StockInfo, len(r.stock))
	hasIssues := false
	for id, info := range r.stock {
		stock[id] = info
		if info.HasIssue() {
			hasIssues = true
		}
	}
	return StockSnapshot{
		Stock:          stock,
		IsLoading:      r.loading,
		HasStockIssues: hasIssues,
	}
}

// Refetch recomputes stock for the cart's current contents. It is invoked
// automatically on cart changes and may be called directly for a manual
// refresh. Non-blocking: the fetch runs in its own goroutine.
func (r *StockReconciler) Refetch() {
	items := r.store.Items()
	ids := distinctProductIDs(items)

	r.mu.Lock()
	r.latestToken++
	token := r.latestToken

	if len(ids) == 0 {
		// Empty cart: replace the mapping immediately and exit any loading
		// state. In-flight fetches are orphaned by the token bump.
		r.stock = make(map[string]domain.StockInfo)
		r.loading = false
		r.mu.Unlock()
		return
	}

	r.loading = true
	r.mu.Unlock()

	go r.fetch(token, items, ids)
}

func (r *StockReconciler) fetch(token uint64, items []domain.CartItem, ids []string) {
	products, err := r.fetcher.ProductsByIDs(context.Background(), ids)

	r.mu.Lock()
	defer r.mu.Unlock()

	if token != r.latestToken {
		// A newer cart state superseded this fetch; discard the result.
		return
	}
	r.loading = false

	if err != nil {
		// Keep the previous mapping; the UI continues showing last-known
		// state with a retry affordance.
		r.logger.Warn("Stock fetch failed, keeping last known state",
			zap.Int("product_count", len(ids)),
			zap.Error(err),
		)
		return
	}

	available := make(map[string]int, len(products))
	for _, p := range products {
		available[p.ID] = p.Quantity
	}

	stock := make(map[string]domain.StockInfo, len(items))
	for _, item := range items {
		// Products deleted or unpublished since they were carted are treated
		// as zero stock.
		currentStock := available[item.ProductID]
		stock[item.ProductID] = domain.StockInfo{
			ProductID:         item.ProductID,
			CurrentStock:      currentStock,
			IsOutOfStock:      currentStock == 0,
			ExceedsStock:      item.Quantity > currentStock,
			AvailableQuantity: min(item.Quantity, currentStock),
		}
	}
	r.stock = stock
}

func (r *StockReconciler) watch() {
	for {
		select {
		case <-r.done:
			return
		case <-r.ch:
			r.Refetch()
		}
	}
}

func distinctProductIDs(items []domain.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
