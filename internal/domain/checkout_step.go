package domain

type CheckoutStep string

const (
	CheckoutStepAddress   CheckoutStep = "ADDRESS"
	CheckoutStepPayment   CheckoutStep = "PAYMENT"
	CheckoutStepConfirmed CheckoutStep = "CONFIRMED"
)

func (s CheckoutStep) IsTerminal() bool {
	return s == CheckoutStepConfirmed
}

// CanTransitionTo encodes the linear flow. Payment may step back to Address;
// Confirmed absorbs.
func CanTransitionTo(from, to CheckoutStep) bool {
	switch from {
	case CheckoutStepAddress:
		return to == CheckoutStepPayment
	case CheckoutStepPayment:
		return to == CheckoutStepAddress || to == CheckoutStepPayment || to == CheckoutStepConfirmed
	default:
		return false
	}
}

// String representation (for logging)
func (s CheckoutStep) String() string {
	return string(s)
}
