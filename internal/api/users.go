package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const anonymousName = "Anonymous"

// UpsertUser creates or refreshes the profile record of a signed-in user.
func (c *Client) UpsertUser(ctx context.Context, p domain.UserProfile) error {
	name := p.Name
	if name == "" {
		name = anonymousName
	}
	provider := p.AuthProvider
	if provider == "" {
		provider = domain.AuthProviderEmail
	}
	req := userRequest{
		Name:         name,
		Email:        p.Email,
		GoogleID:     p.ExternalID,
		AuthProvider: string(provider),
	}
	return c.do(ctx, http.MethodPost, "/users", req, nil)
}
