package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// OAuthProvider runs the GitHub OAuth flows.
type OAuthProvider interface {
	// AuthCodeURL builds the authorize URL for state and an S256 PKCE
	// challenge.
	AuthCodeURL(state, challenge, redirectURI string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*domain.OAuthCredentials, error)

	// DeviceAuth starts the device-code flow.
	DeviceAuth(ctx context.Context) (*domain.DeviceCode, error)

	// PollDevice blocks until the user approves the device code or it expires.
	PollDevice(ctx context.Context, code *domain.DeviceCode) (*domain.OAuthCredentials, error)

	// UserLogin returns the login that owns token.
	UserLogin(ctx context.Context, token string) (string, error)
}
