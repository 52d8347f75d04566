package cart

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// SavedStore holds lines moved out of the cart. It has no merge rule of its
// own; lines re-enter the cart through Store.AddItem semantics.
type SavedStore struct {
	mu    sync.Mutex
	cart  *Store
	items []domain.LineItem
}

func NewSavedStore(cart *Store) *SavedStore {
	return &SavedStore{cart: cart}
}

// SaveForLater moves the cart line for id to the end of the saved list.
// Returns false when id is not in the cart. Cart subscribers are notified
// after the saved list is unlocked, so they may read it.
func (s *SavedStore) SaveForLater(id string) bool {
	s.mu.Lock()
	line, snap, ok := s.cart.remove(id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, line)
	s.mu.Unlock()

	s.cart.notify(snap)
	return true
}

// MoveToCart drops every saved entry for id and adds the product back to the
// cart with quantity 1, merging with any line already there.
func (s *SavedStore) MoveToCart(id string) (domain.LineItem, bool) {
	s.mu.Lock()
	var (
		moved domain.LineItem
		found bool
		kept  = s.items[:0:0]
	)
	for _, item := range s.items {
		if item.ID == id {
			if !found {
				moved = item
				found = true
			}
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		s.mu.Unlock()
		return domain.LineItem{}, false
	}
	s.items = kept

	moved.Gift = false
	result, snap := s.cart.merge(moved, 1)
	s.mu.Unlock()

	s.cart.notify(snap)
	return result, true
}

// Remove discards saved entries for id without touching the cart.
func (s *SavedStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(s.items)
	s.items = kept
	return removed
}

func (s *SavedStore) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *SavedStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (s *SavedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
