// Package identity signs storefront visitors in against the hosted identity
// provider and tracks who is signed in for a session.
package identity

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrRejected           = errors.New("identity provider rejected the credentials")
	ErrPasswordMismatch   = errors.New("passwords don't match")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNotConfigured      = errors.New("identity provider not configured")
)

type Provider interface {
	SignUpWithEmail(ctx context.Context, email, password string) (domain.Principal, error)
	SignInWithEmail(ctx context.Context, email, password string) (domain.Principal, error)
	// SignInWithFederated exchanges an id token issued by the federated
	// provider (Google) for a principal.
	SignInWithFederated(ctx context.Context, idToken string) (domain.Principal, error)
}

// ProfileStore records the profile of a freshly signed-up user.
type ProfileStore interface {
	UpsertUser(ctx context.Context, p domain.UserProfile) error
}
