// Package checkout drives one checkout attempt from shipping address to a
// recorded order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultUserID        = "demo-user"
	DefaultCurrency      = "INR"
	DefaultRecordTimeout = 10 * time.Second
	DefaultRecordRetries = 2

	publishTimeout = 5 * time.Second
)

// Cart is the part of the cart store the flow reads and settles.
type Cart interface {
	IsEmpty() bool
	Items() []domain.LineItem
	Subtotal() decimal.Decimal
	RemovePaid(paid []domain.LineItem)
}

type OrderRecorder interface {
	CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
}

type Deps struct {
	SessionID string
	Cart      Cart
	Scratch   cache.ScratchStore
	Orders    OrderRecorder
	// External serves PaymentExternalGateway, Simulated every other method.
	External  PaymentGateway
	Simulated PaymentGateway
	Verifier  Verifier
	Publisher events.Publisher
	Logger    *zap.Logger

	UserID        func() string
	Currency      string
	RecordTimeout time.Duration
	RecordRetries int
	RecordBackoff time.Duration
	// OnOutcome observes every finished payment attempt.
	OnOutcome func(outcome string)
	Now       func() time.Time
}

// Status is a point-in-time view of the flow for polling clients.
type Status struct {
	Step          domain.CheckoutStep    `json:"step"`
	Address       domain.ShippingAddress `json:"address"`
	PaymentMethod domain.PaymentMethod   `json:"payment_method,omitempty"`
	Paying        bool                   `json:"paying"`
	Total         decimal.Decimal        `json:"total"`
	Receipt       *domain.OrderReceipt   `json:"receipt,omitempty"`
	Unrecorded    *domain.OrderReceipt   `json:"unrecorded,omitempty"`
	LastError     string                 `json:"last_error,omitempty"`
}

type Flow struct {
	d   Deps
	log *zap.Logger

	mu      sync.Mutex
	step    domain.CheckoutStep
	address domain.ShippingAddress
	method  domain.PaymentMethod
	paying  bool
	// unrecorded is a paid order whose persistence failed.
	unrecorded *domain.Order
	receipt    *domain.OrderReceipt
	lastErr    error
	// settled is closed whenever no attempt is running.
	settled chan struct{}
}

// New starts a checkout in the Address step. An empty cart never enters the
// flow. A previously submitted address and method are restored from scratch
// storage to prefill the form.
func New(ctx context.Context, d Deps) (*Flow, error) {
	if d.Cart == nil || d.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if d.Scratch == nil {
		d.Scratch = cache.NewMemoryScratch()
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.UserID == nil {
		d.UserID = func() string { return DefaultUserID }
	}
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if d.RecordTimeout <= 0 {
		d.RecordTimeout = DefaultRecordTimeout
	}
	if d.RecordRetries < 0 {
		d.RecordRetries = 0
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Simulated == nil {
		d.Simulated = NewSimulatedGateway(0)
	}

	f := &Flow{
		d:       d,
		log:     d.Logger.With(zap.String("session_id", d.SessionID)),
		step:    domain.CheckoutStepAddress,
		settled: make(chan struct{}),
	}
	close(f.settled)

	if addr, err := d.Scratch.LoadAddress(ctx, d.SessionID); err == nil {
		f.address = addr
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		f.log.Warn("load saved address failed", zap.Error(err))
	}
	if m, err := d.Scratch.LoadPaymentMethod(ctx, d.SessionID); err == nil {
		f.method = m
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		f.log.Warn("load saved payment method failed", zap.Error(err))
	}

	return f, nil
}

// SubmitAddress moves Address -> Payment. It may be called again from the
// Payment step to amend the address.
func (f *Flow) SubmitAddress(ctx context.Context, addr domain.ShippingAddress) error {
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if missing := addr.Missing(); len(missing) > 0 {
		f.mu.Unlock()
		return &IncompleteAddressError{Missing: missing}
	}
	if !domain.CanTransitionTo(f.step, domain.CheckoutStepPayment) {
		f.mu.Unlock()
		return fmt.Errorf("%w: submit address in %s", ErrInvalidStep, f.step)
	}
	f.address = addr
	f.step = domain.CheckoutStepPayment
	if f.method == "" {
		f.method = domain.DefaultPaymentMethod
	}
	method := f.method
	f.mu.Unlock()

	if err := f.d.Scratch.SaveAddress(ctx, f.d.SessionID, addr); err != nil {
		f.log.Warn("save address failed", zap.Error(err))
	}
	if err := f.d.Scratch.SavePaymentMethod(ctx, f.d.SessionID, method); err != nil {
		f.log.Warn("save payment method failed", zap.Error(err))
	}
	return nil
}

// Back returns from Payment to Address keeping the entered address.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	if f.step != domain.CheckoutStepPayment {
		return fmt.Errorf("%w: back from %s", ErrInvalidStep, f.step)
	}
	f.step = domain.CheckoutStepAddress
	return nil
}

func (f *Flow) SelectPaymentMethod(ctx context.Context, m domain.PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPaymentMethod, string(m))
	}
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.step != domain.CheckoutStepPayment {
		f.mu.Unlock()
		return fmt.Errorf("%w: select payment method in %s", ErrInvalidStep, f.step)
	}
	f.method = m
	f.mu.Unlock()

	if err := f.d.Scratch.SavePaymentMethod(ctx, f.d.SessionID, m); err != nil {
		f.log.Warn("save payment method failed", zap.Error(err))
	}
	return nil
}

// mutableLocked rejects edits while a payment runs, after confirmation and
// once a payment has been taken for the current address and items.
func (f *Flow) mutableLocked() error {
	switch {
	case f.paying:
		return ErrPaymentInProgress
	case f.step.IsTerminal():
		return fmt.Errorf("%w: checkout already confirmed", ErrInvalidStep)
	case f.unrecorded != nil:
		return fmt.Errorf("%w: payment already taken", ErrInvalidStep)
	}
	return nil
}

// Pay runs one payment attempt with the selected method and records the
// order. Only one attempt may be in flight. When an earlier attempt was paid
// but not recorded, Pay only retries the recording.
func (f *Flow) Pay(ctx context.Context) (domain.OrderReceipt, error) {
	f.mu.Lock()
	if f.paying {
		f.mu.Unlock()
		return domain.OrderReceipt{}, ErrPaymentInProgress
	}
	if f.step != domain.CheckoutStepPayment {
		f.mu.Unlock()
		return domain.OrderReceipt{}, fmt.Errorf("%w: pay in %s", ErrInvalidStep, f.step)
	}
	if f.unrecorded != nil {
		order := *f.unrecorded
		f.startLocked()
		f.mu.Unlock()
		return f.record(ctx, order)
	}
	if f.d.Cart.IsEmpty() {
		f.mu.Unlock()
		return domain.OrderReceipt{}, ErrEmptyCart
	}
	f.startLocked()
	method := f.method
	order := domain.Order{
		UserID:          f.d.UserID(),
		Items:           f.d.Cart.Items(),
		Total:           f.d.Cart.Subtotal(),
		ShippingAddress: f.address,
		PaymentMethod:   method,
	}
	f.mu.Unlock()

	log := f.log.With(zap.String("payment_method", method.String()), zap.String("total", order.Total.String()))
	log.Info("payment started")

	gateway := f.d.Simulated
	if method.Hosted() {
		gateway = f.d.External
	}
	if gateway == nil {
		return domain.OrderReceipt{}, f.fail("failed", fmt.Errorf("%w: no gateway for %s", ErrPaymentFailed, method))
	}

	res, err := gateway.Initiate(ctx, order.Total, f.d.Currency)
	if err != nil {
		return domain.OrderReceipt{}, f.fail("failed", fmt.Errorf("%w: %w", ErrPaymentFailed, err))
	}
	switch res.Outcome {
	case OutcomeSucceeded:
	case OutcomeCancelled:
		log.Info("payment cancelled", zap.String("reason", res.Reason))
		return domain.OrderReceipt{}, f.fail("cancelled", ErrPaymentCancelled)
	default:
		return domain.OrderReceipt{}, f.fail("failed", fmt.Errorf("%w: %s", ErrPaymentFailed, res.Reason))
	}

	if method.Hosted() && f.d.Verifier != nil {
		ok, err := f.d.Verifier.VerifyPayment(ctx, res.OrderRef, res.PaymentRef, res.Signature)
		if err != nil {
			return domain.OrderReceipt{}, f.fail("verification_failed", fmt.Errorf("%w: %w", ErrVerificationFailed, err))
		}
		if !ok {
			return domain.OrderReceipt{}, f.fail("verification_failed", ErrVerificationFailed)
		}
	}

	order.OrderID = res.OrderRef
	order.PaymentID = res.PaymentRef
	order.CreatedAt = f.d.Now().UTC()
	log.Info("payment succeeded",
		zap.String("order_id", order.OrderID),
		zap.String("payment_id", order.PaymentID))

	return f.record(ctx, order)
}

// RetryRecord re-attempts persistence of a paid but unrecorded order.
func (f *Flow) RetryRecord(ctx context.Context) (domain.OrderReceipt, error) {
	f.mu.Lock()
	if f.paying {
		f.mu.Unlock()
		return domain.OrderReceipt{}, ErrPaymentInProgress
	}
	if f.unrecorded == nil {
		f.mu.Unlock()
		return domain.OrderReceipt{}, ErrNothingToRetry
	}
	order := *f.unrecorded
	f.startLocked()
	f.mu.Unlock()
	return f.record(ctx, order)
}

// record persists a paid order. Only the order call is retried.
func (f *Flow) record(ctx context.Context, order domain.Order) (domain.OrderReceipt, error) {
	var (
		saved domain.Order
		err   error
	)
	for attempt := 0; attempt <= f.d.RecordRetries; attempt++ {
		if attempt > 0 {
			if !sleep(ctx, time.Duration(attempt)*f.d.RecordBackoff) {
				break
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, f.d.RecordTimeout)
		saved, err = f.d.Orders.CreateOrder(attemptCtx, order)
		cancel()
		if err == nil {
			break
		}
		f.log.Warn("record order failed",
			zap.String("order_id", order.OrderID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}

	if err != nil {
		partial := &PartialFailureError{OrderRef: order.OrderID, PaymentRef: order.PaymentID, Err: err}
		f.mu.Lock()
		f.unrecorded = &order
		f.lastErr = partial
		f.finishLocked()
		f.mu.Unlock()
		f.observe("not_recorded")
		f.publish(order, events.TypeOrderNotRecorded, err.Error())
		return domain.OrderReceipt{}, partial
	}

	if saved.OrderID == "" {
		saved.OrderID = order.OrderID
	}
	if saved.PaymentID == "" {
		saved.PaymentID = order.PaymentID
	}
	receipt := saved.Receipt()

	// paying is still set, so no other attempt can reach this point.
	// Only the paid lines leave the cart; anything added since stays.
	f.d.Cart.RemovePaid(order.Items)
	f.mu.Lock()
	f.step = domain.CheckoutStepConfirmed
	f.receipt = &receipt
	f.unrecorded = nil
	f.lastErr = nil
	f.finishLocked()
	f.mu.Unlock()

	cleanupCtx := context.WithoutCancel(ctx)
	if err := f.d.Scratch.DeleteAddress(cleanupCtx, f.d.SessionID); err != nil {
		f.log.Warn("delete saved address failed", zap.Error(err))
	}
	if err := f.d.Scratch.DeletePaymentMethod(cleanupCtx, f.d.SessionID); err != nil {
		f.log.Warn("delete saved payment method failed", zap.Error(err))
	}

	f.log.Info("order confirmed",
		zap.String("order_id", receipt.OrderID),
		zap.String("payment_id", receipt.PaymentID))
	f.observe("confirmed")
	f.publish(order, events.TypeOrderConfirmed, "")
	return receipt, nil
}

func (f *Flow) fail(outcome string, err error) error {
	f.mu.Lock()
	f.lastErr = err
	f.finishLocked()
	f.mu.Unlock()
	if outcome != "cancelled" {
		f.log.Warn("payment attempt failed", zap.Error(err))
	}
	f.observe(outcome)
	return err
}

func (f *Flow) startLocked() {
	f.paying = true
	f.lastErr = nil
	f.settled = make(chan struct{})
}

func (f *Flow) finishLocked() {
	f.paying = false
	close(f.settled)
}

func (f *Flow) observe(outcome string) {
	if f.d.OnOutcome != nil {
		f.d.OnOutcome(outcome)
	}
}

func (f *Flow) publish(order domain.Order, typ events.Type, reason string) {
	e := events.Event{
		Type:       typ,
		SessionID:  f.d.SessionID,
		UserID:     order.UserID,
		OrderID:    order.OrderID,
		PaymentID:  order.PaymentID,
		Total:      order.Total,
		Currency:   f.d.Currency,
		Reason:     reason,
		OccurredAt: f.d.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := f.d.Publisher.Publish(ctx, e); err != nil {
			f.log.Warn("publish checkout event failed", zap.String("type", string(typ)), zap.Error(err))
		}
	}()
}

func (f *Flow) Step() domain.CheckoutStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Paying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paying
}

// CartLocked reports whether cart edits must wait: while an attempt runs,
// and while a taken payment has no recorded order yet.
func (f *Flow) CartLocked() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.paying:
		return ErrPaymentInProgress
	case f.unrecorded != nil:
		return ErrCartLocked
	}
	return nil
}

// Settled is closed once the running attempt, if any, has finished.
func (f *Flow) Settled() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Err is the error of the last finished attempt.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Flow) Receipt() (domain.OrderReceipt, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receipt == nil {
		return domain.OrderReceipt{}, false
	}
	return *f.receipt, true
}

func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Status{
		Step:          f.step,
		Address:       f.address,
		PaymentMethod: f.method,
		Paying:        f.paying,
	}
	if f.receipt != nil {
		r := *f.receipt
		s.Receipt = &r
	}
	switch {
	case f.unrecorded != nil:
		r := f.unrecorded.Receipt()
		s.Unrecorded = &r
		s.Total = f.unrecorded.Total
	case f.step != domain.CheckoutStepConfirmed:
		s.Total = f.d.Cart.Subtotal()
	}
	if f.lastErr != nil {
		s.LastError = f.lastErr.Error()
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
