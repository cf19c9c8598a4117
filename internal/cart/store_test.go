package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func TestStoreMergesDuplicateProducts(t *testing.T) {
	s := NewStore()

	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Price: 10, Quantity: 2})
	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Price: 10, Quantity: 3})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, s.TotalItems())
	assert.Equal(t, 50.0, s.TotalPrice())
}

func TestStoreAddDefaultsQuantityToOne(t *testing.T) {
	s := NewStore()
	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget"})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestStoreUpdateQuantityZeroRemoves(t *testing.T) {
	s := NewStore()
	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 2})
	s.AddItem(domain.CartItem{ProductID: "p2", Name: "Lamp", Quantity: 1})

	s.UpdateQuantity("p1", 0)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestStoreRemoveAndClear(t *testing.T) {
	s := NewStore()
	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})
	s.AddItem(domain.CartItem{ProductID: "p2", Name: "Lamp", Quantity: 1})

	s.RemoveItem("p1")
	require.Len(t, s.Items(), 1)

	s.Clear()
	assert.Empty(t, s.Items())
	assert.Zero(t, s.TotalItems())
}

func TestStoreItemsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestStoreSubscribeReceivesChanges(t *testing.T) {
	s := NewStore()
	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestStoreNotificationsCoalesce(t *testing.T) {
	s := NewStore()
	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	// A burst of mutations with no consumer must not block
	for i := 0; i < 10; i++ {
		s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no coalesced notification")
	}
	assert.Equal(t, 10, s.Items()[0].Quantity)
}

func TestStoreUnsubscribeStopsNotifications(t *testing.T) {
	s := NewStore()
	id, ch := s.Subscribe()
	s.Unsubscribe(id)

	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})

	select {
	case <-ch:
		t.Fatal("notification after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStoreOnChangeSeesEveryMutation(t *testing.T) {
	s := NewStore()

	var writes [][]domain.CartItem
	s.SetOnChange(func(items []domain.CartItem) {
		writes = append(writes, items)
	})

	s.AddItem(domain.CartItem{ProductID: "p1", Name: "Widget", Quantity: 1})
	s.RemoveItem("p1")

	require.Len(t, writes, 2)
	assert.Len(t, writes[0], 1)
	assert.Empty(t, writes[1])
}

func TestStoreReplaceDoesNotNotify(t *testing.T) {
	s := NewStore()
	id, ch := s.Subscribe()
	defer s.Unsubscribe(id)

	s.replace([]domain.CartItem{{ProductID: "p1", Name: "Widget", Quantity: 2}})

	select {
	case <-ch:
		t.Fatal("hydration must not notify subscribers")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 2, s.Items()[0].Quantity)
}
