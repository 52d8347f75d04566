package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginCheckout_EmptyCart(t *testing.T) {
	r, _ := newTestRegistry(t)
	s := r.Create()

	_, err := s.BeginCheckout(context.Background())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	_, ok := s.Checkout()
	assert.False(t, ok)
}

func TestBeginCheckout_StartsFreshFlow(t *testing.T) {
	r, _ := newTestRegistry(t)
	s := r.Create()
	s.Cart.AddItem(domain.Product{ID: "p1", Price: decimal.NewFromInt(10)}, 1)

	first, err := s.BeginCheckout(context.Background())
	require.NoError(t, err)
	current, ok := s.Checkout()
	require.True(t, ok)
	assert.Same(t, first, current)

	second, err := s.BeginCheckout(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestUserID(t *testing.T) {
	r, _ := newTestRegistry(t)
	s := r.Create()
	assert.Equal(t, checkout.DefaultUserID, s.UserID())

	_, err := s.Auth.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "uid-a@b.c", s.UserID())

	s.Auth.SignOut()
	assert.Equal(t, checkout.DefaultUserID, s.UserID())
}

func TestSimulatedCheckoutThroughSession(t *testing.T) {
	r, _ := newTestRegistry(t)
	s := r.Create()
	s.Cart.AddItem(domain.Product{ID: "A", Price: decimal.NewFromInt(500)}, 1)

	f, err := s.BeginCheckout(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.SubmitAddress(context.Background(), domain.ShippingAddress{
		Name: "A", Street: "B", City: "C", State: "D", PostalCode: "1", Phone: "2",
	}))
	require.NoError(t, f.SelectPaymentMethod(context.Background(), domain.PaymentSimulated))

	receipt, err := f.Pay(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderID)
	assert.NotEmpty(t, receipt.PaymentID)
	assert.True(t, s.Cart.IsEmpty())
	assert.False(t, s.Paying())
}

type failingOrders struct{}

func (failingOrders) CreateOrder(context.Context, domain.Order) (domain.Order, error) {
	return domain.Order{}, errors.New("orders api unavailable")
}

func TestCheckout_RecordBackoffAndCartLock(t *testing.T) {
	deps := testDeps()
	deps.Orders = failingOrders{}
	deps.RecordRetries = 2
	deps.RecordBackoff = 40 * time.Millisecond
	r := NewRegistry(deps, time.Hour, time.Hour)
	t.Cleanup(func() { _ = r.Close() })

	s := r.Create()
	s.Cart.AddItem(domain.Product{ID: "A", Price: decimal.NewFromInt(500)}, 1)
	assert.NoError(t, s.CartLocked())

	f, err := s.BeginCheckout(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.SubmitAddress(context.Background(), domain.ShippingAddress{
		Name: "A", Street: "B", City: "C", State: "D", PostalCode: "1", Phone: "2",
	}))
	require.NoError(t, f.SelectPaymentMethod(context.Background(), domain.PaymentSimulated))

	start := time.Now()
	_, err = f.Pay(context.Background())
	require.ErrorIs(t, err, checkout.ErrOrderNotRecorded)
	// two retries wait one and then two backoff steps
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)

	assert.ErrorIs(t, s.CartLocked(), checkout.ErrCartLocked)
	again, err := s.BeginCheckout(context.Background())
	require.NoError(t, err)
	assert.Same(t, f, again, "the unrecorded payment keeps its checkout")
}
