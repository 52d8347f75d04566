package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrIncompleteAddress   = errors.New("shipping address is incomplete")
	ErrInvalidStep         = errors.New("operation not allowed in current checkout step")
	ErrPaymentInProgress   = errors.New("payment already in progress")
	ErrCartLocked          = errors.New("cart is locked until the paid order is recorded")
	ErrPaymentCancelled    = errors.New("payment cancelled")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrOrderNotRecorded    = errors.New("payment succeeded but order was not recorded")
	ErrNothingToRetry      = errors.New("no recorded payment awaiting an order")
	ErrUnknownPaymentOrder = errors.New("unknown payment order")
)

// IncompleteAddressError lists the blank address fields.
type IncompleteAddressError struct {
	Missing []string
}

func (e *IncompleteAddressError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteAddress, strings.Join(e.Missing, ", "))
}

func (e *IncompleteAddressError) Is(target error) bool {
	return target == ErrIncompleteAddress
}

// PartialFailureError is returned when the payment went through and every
// attempt to persist the order failed. The cart is kept and the refs let the
// caller retry the recording without charging again.
type PartialFailureError struct {
	OrderRef   string
	PaymentRef string
	Err        error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("payment %s succeeded but order %s was not recorded: %v", e.PaymentRef, e.OrderRef, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrOrderNotRecorded
}
