// Package cart owns the active cart of one storefront session and the
// saved-for-later list hanging off it.
package cart

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxQuantity is the per-line ceiling offered by the quantity selector.
const MaxQuantity = 10

// Snapshot is the derived view handed to subscribers after every mutation.
type Snapshot struct {
	Items    []domain.LineItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Count    int               `json:"count"`
}

// Store is the single source of truth for a session's cart. Items are kept in
// insertion order with at most one line per product id and every quantity in
// [1, max].
type Store struct {
	mu     sync.Mutex
	items  []domain.LineItem
	maxQty int
	log    *zap.Logger

	subsMu  sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Store)

func WithMaxQuantity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxQty = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		maxQty: MaxQuantity,
		log:    zap.NewNop(),
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) MaxQuantity() int {
	return s.maxQty
}

// AddItem merges p into the cart. An existing line grows to
// min(existing+qty, max) and takes the incoming display fields; a new line
// starts at clamp(qty, 1, max).
func (s *Store) AddItem(p domain.Product, qty int) domain.LineItem {
	return s.addLine(domain.LineFromProduct(p), qty)
}

func (s *Store) addLine(line domain.LineItem, qty int) domain.LineItem {
	result, snap := s.merge(line, qty)
	s.log.Debug("cart item added", zap.String("product_id", line.ID), zap.Int("quantity", result.Quantity))
	s.notify(snap)
	return result
}

// merge applies the add rule without notifying subscribers.
func (s *Store) merge(line domain.LineItem, qty int) (domain.LineItem, Snapshot) {
	qty = clamp(qty, 1, s.maxQty)

	s.mu.Lock()
	defer s.mu.Unlock()
	var result domain.LineItem
	if i := s.indexOf(line.ID); i >= 0 {
		existing := s.items[i]
		existing.Name = line.Name
		existing.UnitPrice = line.UnitPrice
		existing.ImageRef = line.ImageRef
		existing.Quantity = min(existing.Quantity+qty, s.maxQty)
		s.items[i] = existing
		result = existing
	} else {
		line.Quantity = qty
		s.items = append(s.items, line)
		result = line
	}
	return result, s.snapshotLocked()
}

// RemoveItem deletes the line for id. Removing an absent id is a no-op.
func (s *Store) RemoveItem(id string) bool {
	_, ok := s.take(id)
	return ok
}

// take removes and returns the line for id.
func (s *Store) take(id string) (domain.LineItem, bool) {
	line, snap, ok := s.remove(id)
	if !ok {
		return domain.LineItem{}, false
	}
	s.log.Debug("cart item removed", zap.String("product_id", id))
	s.notify(snap)
	return line, true
}

// remove is take without notifying subscribers.
func (s *Store) remove(id string) (domain.LineItem, Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.LineItem{}, Snapshot{}, false
	}
	line := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return line, s.snapshotLocked(), true
}

// SetQuantity updates the line in place. Zero removes the line; values outside
// [0, max] fail with ErrInvalidQuantity.
func (s *Store) SetQuantity(id string, qty int) error {
	if qty < 0 || qty > s.maxQty {
		return &QuantityError{Quantity: qty, Max: s.maxQty}
	}
	if qty == 0 {
		s.RemoveItem(id)
		return nil
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	s.items[i].Quantity = qty
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// ToggleGift flips the gift flag of a line and returns the new value.
func (s *Store) ToggleGift(id string) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, ErrItemNotFound
	}
	s.items[i].Gift = !s.items[i].Gift
	gift := s.items[i].Gift
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return gift, nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("cart cleared")
	s.notify(snap)
}

// RemovePaid takes the paid quantities out of the cart. Lines added or grown
// after the order was taken keep their unpaid remainder.
func (s *Store) RemovePaid(paid []domain.LineItem) {
	s.mu.Lock()
	for _, p := range paid {
		i := s.indexOf(p.ID)
		if i < 0 {
			continue
		}
		if s.items[i].Quantity <= p.Quantity {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			continue
		}
		s.items[i].Quantity -= p.Quantity
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug("paid lines removed from cart", zap.Int("remaining", len(snap.Items)))
	s.notify(snap)
}

// Items returns a copy of the current lines.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) Get(id string) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return domain.LineItem{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.items)
}

func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.CountItems(s.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned func unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyLocked() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:    s.copyLocked(),
		Subtotal: pricing.Subtotal(s.items),
		Count:    pricing.CountItems(s.items),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
