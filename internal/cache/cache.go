package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ScratchStore keeps best-effort per-session state between checkout steps
// and page loads. Nothing in it is authoritative.
type ScratchStore interface {
	SaveAddress(ctx context.Context, sessionID string, addr domain.ShippingAddress) error
	LoadAddress(ctx context.Context, sessionID string) (domain.ShippingAddress, error)
	DeleteAddress(ctx context.Context, sessionID string) error

	SavePaymentMethod(ctx context.Context, sessionID string, m domain.PaymentMethod) error
	LoadPaymentMethod(ctx context.Context, sessionID string) (domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, sessionID string) error

	SaveLocation(ctx context.Context, sessionID, location string) error
	LoadLocation(ctx context.Context, sessionID string) (string, error)
}

// CatalogCache holds the bulk product list.
type CatalogCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}
