package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is created by the remote order collaborator.
type Order struct {
	OrderID         string
	PaymentID       string
	UserID          string
	Items           []LineItem
	Total           decimal.Decimal
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Status          OrderStatus
	CreatedAt       time.Time
}

// OrderReceipt is what the confirmation view receives.
type OrderReceipt struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

func (o Order) Receipt() OrderReceipt {
	return OrderReceipt{OrderID: o.OrderID, PaymentID: o.PaymentID}
}

// PaymentOrder is the opaque payment-session handle issued before the hosted
// payment widget opens.
type PaymentOrder struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}
