// Package events publishes checkout outcome events.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeOrderConfirmed Type = "order.confirmed"
	// TypeOrderNotRecorded means the payment went through but the order
	// could not be persisted.
	TypeOrderNotRecorded Type = "order.not_recorded"
)

type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	SessionID  string          `json:"session_id"`
	UserID     string          `json:"user_id,omitempty"`
	OrderID    string          `json:"order_id"`
	PaymentID  string          `json:"payment_id"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	Reason     string          `json:"reason,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
