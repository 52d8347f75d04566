package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentOrder registers a payment order with the hosted gateway through the API.
func (c *Client) CreatePaymentOrder(ctx context.Context, amount decimal.Decimal, currency string) (domain.PaymentOrder, error) {
	var resp paymentOrderResponse
	req := paymentOrderRequest{Amount: number(amount), Currency: currency}
	if err := c.do(ctx, http.MethodPost, "/payments/create-order", req, &resp); err != nil {
		return domain.PaymentOrder{}, err
	}
	order := domain.PaymentOrder{ID: resp.ID, Amount: resp.Amount, Currency: resp.Currency}
	if order.Currency == "" {
		order.Currency = currency
	}
	if order.Amount.IsZero() {
		order.Amount = amount
	}
	return order, nil
}

// VerifyPayment asks the API to check the gateway signature of a payment.
func (c *Client) VerifyPayment(ctx context.Context, orderRef, paymentRef, signature string) (bool, error) {
	var resp verifyPaymentResponse
	req := verifyPaymentRequest{OrderID: orderRef, PaymentID: paymentRef, Signature: signature}
	if err := c.do(ctx, http.MethodPost, "/payments/verify-payment", req, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
