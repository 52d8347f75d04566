// Package session keeps the per-visitor state of the storefront: cart,
// saved-for-later list, auth state and the running checkout.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/identity"
	"go.uber.org/zap"
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Scratch       cache.ScratchStore
	Orders        checkout.OrderRecorder
	PaymentOrders checkout.PaymentOrderCreator
	Verifier      checkout.Verifier
	Identity      identity.Provider
	Profiles      identity.ProfileStore
	Publisher     events.Publisher
	Logger        *zap.Logger

	MaxQuantity    int
	Currency       string
	RecordTimeout  time.Duration
	RecordRetries  int
	RecordBackoff  time.Duration
	SimulatedDelay time.Duration
	PaymentWindow  time.Duration
	OnOutcome      func(outcome string)
}

type Session struct {
	ID     string
	Cart   *cart.Store
	Saved  *cart.SavedStore
	Auth   *identity.Service
	Hosted *checkout.HostedGateway

	deps      *Deps
	simulated *checkout.SimulatedGateway
	log       *zap.Logger

	// ctx outlives single requests; background payments run under it.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	flow     *checkout.Flow
	lastSeen time.Time
}

func newSession(id string, deps *Deps, now time.Time) *Session {
	log := deps.Logger.With(zap.String("session_id", id))
	c := cart.NewStore(cart.WithMaxQuantity(deps.MaxQuantity), cart.WithLogger(log))
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		Cart:      c,
		Saved:     cart.NewSavedStore(c),
		Auth:      identity.NewService(deps.Identity, deps.Profiles, log),
		Hosted:    checkout.NewHostedGateway(deps.PaymentOrders, deps.PaymentWindow),
		deps:      deps,
		simulated: checkout.NewSimulatedGateway(deps.SimulatedDelay),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		lastSeen:  now,
	}
}

// Context is cancelled when the session is evicted.
func (s *Session) Context() context.Context {
	return s.ctx
}

// UserID is the signed-in uid, or the demo user for anonymous checkouts.
func (s *Session) UserID() string {
	if p, ok := s.Auth.Current(); ok && p.UID != "" {
		return p.UID
	}
	return checkout.DefaultUserID
}

// BeginCheckout starts a fresh checkout. A checkout that is paying, or that
// holds a paid but unrecorded order, is returned as is instead.
func (s *Session) BeginCheckout(ctx context.Context) (*checkout.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow != nil {
		if s.flow.Paying() {
			return nil, checkout.ErrPaymentInProgress
		}
		if s.flow.Status().Unrecorded != nil {
			return s.flow, nil
		}
	}

	f, err := checkout.New(ctx, checkout.Deps{
		SessionID:     s.ID,
		Cart:          s.Cart,
		Scratch:       s.deps.Scratch,
		Orders:        s.deps.Orders,
		External:      s.Hosted,
		Simulated:     s.simulated,
		Verifier:      s.deps.Verifier,
		Publisher:     s.deps.Publisher,
		Logger:        s.log,
		UserID:        s.UserID,
		Currency:      s.deps.Currency,
		RecordTimeout: s.deps.RecordTimeout,
		RecordRetries: s.deps.RecordRetries,
		RecordBackoff: s.deps.RecordBackoff,
		OnOutcome:     s.deps.OnOutcome,
	})
	if err != nil {
		return nil, err
	}
	s.flow = f
	return f, nil
}

// Checkout returns the current checkout, if any.
func (s *Session) Checkout() (*checkout.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow, s.flow != nil
}

// Paying reports whether a payment attempt is running.
func (s *Session) Paying() bool {
	f, ok := s.Checkout()
	return ok && f.Paying()
}

// CartLocked returns why cart edits are refused right now, or nil.
func (s *Session) CartLocked() error {
	f, ok := s.Checkout()
	if !ok {
		return nil
	}
	return f.CartLocked()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.cancel()
}
