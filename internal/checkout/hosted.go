package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentOrderCreator registers a payment order before the widget opens.
type PaymentOrderCreator interface {
	CreatePaymentOrder(ctx context.Context, amount decimal.Decimal, currency string) (domain.PaymentOrder, error)
}

// HostedGateway bridges the browser-side payment widget. Initiate creates the
// payment order, announces it on Opened and then waits for the browser to
// report the widget result through Resolve.
type HostedGateway struct {
	orders PaymentOrderCreator
	window time.Duration

	mu      sync.Mutex
	pending map[string]chan PaymentResult
	current *domain.PaymentOrder
	opened  chan domain.PaymentOrder
}

// NewHostedGateway returns a gateway that gives up after window. Zero means
// wait until ctx is done.
func NewHostedGateway(orders PaymentOrderCreator, window time.Duration) *HostedGateway {
	return &HostedGateway{
		orders:  orders,
		window:  window,
		pending: make(map[string]chan PaymentResult),
		opened:  make(chan domain.PaymentOrder, 1),
	}
}

func (g *HostedGateway) Initiate(ctx context.Context, amount decimal.Decimal, currency string) (PaymentResult, error) {
	if g.orders == nil {
		return PaymentResult{}, errors.New("hosted gateway has no payment order creator")
	}
	order, err := g.orders.CreatePaymentOrder(ctx, amount, currency)
	if err != nil {
		return PaymentResult{}, fmt.Errorf("create payment order: %w", err)
	}

	ch := make(chan PaymentResult, 1)
	g.mu.Lock()
	g.pending[order.ID] = ch
	g.current = &order
	g.mu.Unlock()
	defer g.forget(order.ID)

	// keep only the latest announcement
	select {
	case <-g.opened:
	default:
	}
	g.opened <- order

	var expired <-chan time.Time
	if g.window > 0 {
		timer := time.NewTimer(g.window)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-ch:
		if res.OrderRef == "" {
			res.OrderRef = order.ID
		}
		return res, nil
	case <-expired:
		return PaymentResult{Outcome: OutcomeCancelled, OrderRef: order.ID, Reason: "payment window expired"}, nil
	case <-ctx.Done():
		return PaymentResult{Outcome: OutcomeCancelled, OrderRef: order.ID, Reason: ctx.Err().Error()}, nil
	}
}

// Opened delivers each payment order as soon as the widget may be shown.
func (g *HostedGateway) Opened() <-chan domain.PaymentOrder {
	return g.opened
}

// Current returns the payment order still awaiting a result.
func (g *HostedGateway) Current() (domain.PaymentOrder, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return domain.PaymentOrder{}, false
	}
	return *g.current, true
}

// Resolve hands the widget result for orderRef to the waiting Initiate.
func (g *HostedGateway) Resolve(orderRef string, res PaymentResult) error {
	g.mu.Lock()
	ch, ok := g.pending[orderRef]
	if ok {
		delete(g.pending, orderRef)
	}
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPaymentOrder, orderRef)
	}
	ch <- res
	return nil
}

// Dismiss reports that the customer closed the widget.
func (g *HostedGateway) Dismiss(orderRef string) error {
	return g.Resolve(orderRef, PaymentResult{Outcome: OutcomeCancelled, OrderRef: orderRef, Reason: "dismissed"})
}

func (g *HostedGateway) forget(orderRef string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, orderRef)
	if g.current != nil && g.current.ID == orderRef {
		g.current = nil
	}
}
