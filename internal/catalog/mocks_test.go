package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type mockSource struct {
	products  []domain.Product
	err       error
	release   chan struct{}
	listCalls atomic.Int32
	getCalls  atomic.Int32
}

func (m *mockSource) ListProducts(context.Context) ([]domain.Product, error) {
	m.listCalls.Add(1)
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockSource) GetProduct(_ context.Context, id string) (domain.Product, error) {
	m.getCalls.Add(1)
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &api.StatusError{Code: 404}
}

type mockCache struct {
	mu       sync.Mutex
	products []domain.Product
	getErr   error
	setCalls int
}

func (m *mockCache) Get(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockCache) Set(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	m.setCalls++
	return nil
}

func (m *mockCache) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = nil
	return nil
}

func (m *mockCache) sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}
