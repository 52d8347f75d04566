package domain

import (
	"errors"
	"strings"
)

type PaymentMethod string

const (
	PaymentCard            PaymentMethod = "card"
	PaymentUPI             PaymentMethod = "upi"
	PaymentNetBanking      PaymentMethod = "netbanking"
	PaymentCashOnDelivery  PaymentMethod = "cod"
	PaymentExternalGateway PaymentMethod = "external"
	PaymentSimulated       PaymentMethod = "simulated"
)

// DefaultPaymentMethod is preselected when the address step completes.
const DefaultPaymentMethod = PaymentCard

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

var paymentMethods = []PaymentMethod{
	PaymentCard,
	PaymentUPI,
	PaymentNetBanking,
	PaymentCashOnDelivery,
	PaymentExternalGateway,
	PaymentSimulated,
}

func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range paymentMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", ErrUnknownPaymentMethod
}

func (m PaymentMethod) Valid() bool {
	_, err := ParsePaymentMethod(string(m))
	return err == nil
}

// Hosted reports whether the method hands control to the external payment widget.
func (m PaymentMethod) Hosted() bool {
	return m == PaymentExternalGateway
}

func (m PaymentMethod) String() string {
	return string(m)
}
