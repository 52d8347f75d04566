package cache

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryScratch is the ScratchStore used when no redis is configured.
type MemoryScratch struct {
	mu        sync.RWMutex
	addresses map[string]domain.ShippingAddress
	methods   map[string]domain.PaymentMethod
	locations map[string]string
}

func NewMemoryScratch() *MemoryScratch {
	return &MemoryScratch{
		addresses: make(map[string]domain.ShippingAddress),
		methods:   make(map[string]domain.PaymentMethod),
		locations: make(map[string]string),
	}
}

func (m *MemoryScratch) SaveAddress(_ context.Context, sessionID string, addr domain.ShippingAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[sessionID] = addr
	return nil
}

func (m *MemoryScratch) LoadAddress(_ context.Context, sessionID string) (domain.ShippingAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr, ok := m.addresses[sessionID]
	if !ok {
		return domain.ShippingAddress{}, ErrCacheMiss
	}
	return addr, nil
}

func (m *MemoryScratch) DeleteAddress(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.addresses, sessionID)
	return nil
}

func (m *MemoryScratch) SavePaymentMethod(_ context.Context, sessionID string, method domain.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[sessionID] = method
	return nil
}

func (m *MemoryScratch) LoadPaymentMethod(_ context.Context, sessionID string) (domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	method, ok := m.methods[sessionID]
	if !ok {
		return "", ErrCacheMiss
	}
	return method, nil
}

func (m *MemoryScratch) DeletePaymentMethod(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.methods, sessionID)
	return nil
}

func (m *MemoryScratch) SaveLocation(_ context.Context, sessionID, location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[sessionID] = location
	return nil
}

func (m *MemoryScratch) LoadLocation(_ context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locations[sessionID]
	if !ok {
		return "", ErrCacheMiss
	}
	return loc, nil
}

// NopCatalogCache always misses.
type NopCatalogCache struct{}

func (NopCatalogCache) Get(context.Context) ([]domain.Product, error) { return nil, ErrCacheMiss }
func (NopCatalogCache) Set(context.Context, []domain.Product) error   { return nil }
func (NopCatalogCache) Delete(context.Context) error                  { return nil }
