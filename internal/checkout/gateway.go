package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// PaymentResult is what a gateway reports once the customer is done with it.
// Signature is only set by gateways whose result must be verified.
type PaymentResult struct {
	Outcome    Outcome `json:"outcome"`
	OrderRef   string  `json:"order_ref,omitempty"`
	PaymentRef string  `json:"payment_ref,omitempty"`
	Signature  string  `json:"signature,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// PaymentGateway collects one payment. Initiate blocks until the payment is
// resolved or ctx is done; a done ctx resolves to OutcomeCancelled.
type PaymentGateway interface {
	Initiate(ctx context.Context, amount decimal.Decimal, currency string) (PaymentResult, error)
}

// Verifier checks the signature of a hosted gateway result.
type Verifier interface {
	VerifyPayment(ctx context.Context, orderRef, paymentRef, signature string) (bool, error)
}

// SimulatedGateway approves every payment after Delay. After and NewID are
// swappable so tests control timing and ids.
type SimulatedGateway struct {
	Delay time.Duration
	After func(time.Duration) <-chan time.Time
	NewID func(prefix string) string
}

func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay, After: time.After, NewID: randomRef}
}

func (g *SimulatedGateway) Initiate(ctx context.Context, _ decimal.Decimal, _ string) (PaymentResult, error) {
	after := g.After
	if after == nil {
		after = time.After
	}
	newID := g.NewID
	if newID == nil {
		newID = randomRef
	}

	select {
	case <-after(g.Delay):
	case <-ctx.Done():
		return PaymentResult{Outcome: OutcomeCancelled, Reason: ctx.Err().Error()}, nil
	}

	return PaymentResult{
		Outcome:    OutcomeSucceeded,
		OrderRef:   newID("ORD_"),
		PaymentRef: newID("PAY_"),
	}, nil
}

// randomRef returns prefix followed by nine upper-case alphanumerics.
func randomRef(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:9])
}
