package http

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"github.com/shopspring/decimal"
)

type mockSource struct {
	products []domain.Product
	err      error
}

func (m *mockSource) ListProducts(context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockSource) GetProduct(_ context.Context, id string) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &api.StatusError{Method: "GET", Path: "/products/" + id, Code: 404}
}

// mockOrders records orders and serves them back as history.
type mockOrders struct {
	mu      sync.Mutex
	failing bool
	orders  []domain.Order
}

func (m *mockOrders) setFailing(v bool) {
	m.mu.Lock()
	m.failing = v
	m.mu.Unlock()
}

func (m *mockOrders) CreateOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return domain.Order{}, api.ErrUnavailable
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *mockOrders) ListUserOrders(_ context.Context, userID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockPaymentOrders struct{}

func (mockPaymentOrders) CreatePaymentOrder(_ context.Context, amount decimal.Decimal, currency string) (domain.PaymentOrder, error) {
	return domain.PaymentOrder{ID: "order_test", Amount: amount, Currency: currency}, nil
}

// stalledPaymentOrders never answers; it reports each call on entered and
// gives up when ctx ends.
type stalledPaymentOrders struct {
	entered chan struct{}
}

func (m stalledPaymentOrders) CreatePaymentOrder(ctx context.Context, _ decimal.Decimal, _ string) (domain.PaymentOrder, error) {
	select {
	case m.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return domain.PaymentOrder{}, ctx.Err()
}

type mockVerifier struct {
	ok bool
}

func (m mockVerifier) VerifyPayment(context.Context, string, string, string) (bool, error) {
	return m.ok, nil
}

type mockProvider struct{}

func (mockProvider) SignUpWithEmail(_ context.Context, email, _ string) (domain.Principal, error) {
	return domain.Principal{UID: "uid-" + email, Email: email}, nil
}

func (mockProvider) SignInWithEmail(_ context.Context, email, password string) (domain.Principal, error) {
	if password != "secret" {
		return domain.Principal{}, errors.Join(identity.ErrRejected, errors.New("INVALID_PASSWORD"))
	}
	return domain.Principal{UID: "uid-" + email, Email: email}, nil
}

func (mockProvider) SignInWithFederated(_ context.Context, idToken string) (domain.Principal, error) {
	return domain.Principal{UID: "google-" + idToken, DisplayName: "Federated"}, nil
}

type mockProfiles struct {
	mu    sync.Mutex
	users []domain.UserProfile
}

func (m *mockProfiles) UpsertUser(_ context.Context, p domain.UserProfile) error {
	m.mu.Lock()
	m.users = append(m.users, p)
	m.mu.Unlock()
	return nil
}

func (m *mockOrders) recorded() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.orders...)
}

func (m *mockProfiles) upserted() []domain.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.UserProfile(nil), m.users...)
}
