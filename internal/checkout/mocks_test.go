package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/shopspring/decimal"
)

type mockOrders struct {
	mu       sync.Mutex
	failures int // first n calls fail
	err      error
	block    bool
	calls    []domain.Order
}

func (m *mockOrders) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	m.mu.Lock()
	m.calls = append(m.calls, o)
	n := len(m.calls)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return domain.Order{}, ctx.Err()
	}
	if n <= m.failures {
		err := m.err
		if err == nil {
			err = errors.New("orders api unavailable")
		}
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatusConfirmed
	return o, nil
}

func (m *mockOrders) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockOrders) lastCall() domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

type mockVerifier struct {
	ok  bool
	err error

	mu   sync.Mutex
	seen []string
}

func (m *mockVerifier) VerifyPayment(_ context.Context, orderRef, paymentRef, signature string) (bool, error) {
	m.mu.Lock()
	m.seen = append(m.seen, orderRef+"|"+paymentRef+"|"+signature)
	m.mu.Unlock()
	return m.ok, m.err
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) types() []events.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Type, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// stubGateway returns a fixed result, optionally waiting for release first.
type stubGateway struct {
	result  PaymentResult
	err     error
	release chan struct{}

	mu      sync.Mutex
	calls   int
	amounts []decimal.Decimal
}

func (g *stubGateway) Initiate(ctx context.Context, amount decimal.Decimal, _ string) (PaymentResult, error) {
	g.mu.Lock()
	g.calls++
	g.amounts = append(g.amounts, amount)
	g.mu.Unlock()
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return PaymentResult{Outcome: OutcomeCancelled}, nil
		}
	}
	return g.result, g.err
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type mockPaymentOrders struct {
	err error
	id  string
}

func (m *mockPaymentOrders) CreatePaymentOrder(_ context.Context, amount decimal.Decimal, currency string) (domain.PaymentOrder, error) {
	if m.err != nil {
		return domain.PaymentOrder{}, m.err
	}
	return domain.PaymentOrder{ID: m.id, Amount: amount, Currency: currency}, nil
}

// instant makes the simulated gateway resolve without waiting.
func instant(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func fixedIDs(prefix string) string {
	return prefix + "TEST00001"
}
