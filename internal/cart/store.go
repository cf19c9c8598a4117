package cart

import (
	"sync"

	"github.com/jafarshop/storefront/internal/domain"
)

// Store is a session-scoped observable cart. All mutations notify
// subscribers, which is what drives stock reconciliation. One store exists
// per browsing session; it is handed around by the Manager, never held in a
// package-level singleton.
type Store struct {
	mu       sync.Mutex
	items    []domain.CartItem
	subs     map[int]chan struct{}
	nextSub  int
	onChange func(items []domain.CartItem)
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{
		subs: make(map[int]chan struct{}),
	}
}

// SetOnChange installs a persistence hook invoked after every mutation with
// a copy of the current items. Used by the Manager for write-through storage.
// The hook runs under the store lock and must not call back into the store.
func (s *Store) SetOnChange(fn func(items []domain.CartItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// AddItem adds a product to the cart. Adding a product already in the cart
// merges quantities, so the cart holds one entry per product.
func (s *Store) AddItem(item domain.CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	s.changedLocked()
	s.mu.Unlock()
}

// UpdateQuantity sets the quantity for a product; zero or negative removes it
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	if quantity <= 0 {
		s.removeLocked(productID)
	} else {
		for i := range s.items {
			if s.items[i].ProductID == productID {
				s.items[i].Quantity = quantity
				break
			}
		}
	}
	s.changedLocked()
	s.mu.Unlock()
}

// RemoveItem deletes a product from the cart
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	s.removeLocked(productID)
	s.changedLocked()
	s.mu.Unlock()
}

// Clear empties the cart (used after checkout completes)
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.changedLocked()
	s.mu.Unlock()
}

// Items returns a copy of the cart lines in insertion order
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItemsLocked()
}

// TotalItems returns the summed quantity across all lines
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the cart subtotal at client-side prices. Checkout never
// trusts this value; it recomputes from CMS snapshots.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Subscribe registers a change listener. The channel is buffered and
// notifications coalesce: a slow consumer sees at least one signal for any
// burst of mutations.
func (s *Store) Subscribe() (int, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a change listener
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// replace swaps the full item set without notifying subscribers. Used by the
// Manager when hydrating a store from persisted state.
func (s *Store) replace(items []domain.CartItem) {
	s.mu.Lock()
	s.items = append([]domain.CartItem(nil), items...)
	s.mu.Unlock()
}

func (s *Store) removeLocked(productID string) {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
}

func (s *Store) changedLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	if s.onChange != nil {
		s.onChange(s.copyItemsLocked())
	}
}

func (s *Store) copyItemsLocked() []domain.CartItem {
	return append([]domain.CartItem(nil), s.items...)
}
