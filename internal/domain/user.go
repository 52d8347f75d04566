package domain

type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// Principal is the identity returned by the identity collaborator.
type Principal struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// UserProfile is upserted into the remote API after every sign-in.
type UserProfile struct {
	Name         string
	Email        string
	ExternalID   string
	AuthProvider AuthProvider
}
