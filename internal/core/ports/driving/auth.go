package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// AuthService manages the GitHub credential.
type AuthService interface {
	// StartAuthorization prepares an authorization-code flow with PKCE.
	StartAuthorization(redirectURI string) (*domain.AuthorizationRequest, error)

	// CompleteAuthorization exchanges code and stores the credential.
	CompleteAuthorization(ctx context.Context, req *domain.AuthorizationRequest, code string) (*domain.Credentials, error)

	// StartDevice begins the device-code flow.
	StartDevice(ctx context.Context) (*domain.DeviceCode, error)

	// CompleteDevice polls until approval and stores the credential.
	CompleteDevice(ctx context.Context, code *domain.DeviceCode) (*domain.Credentials, error)

	// SaveToken stores a personal access token.
	SaveToken(ctx context.Context, token string) (*domain.Credentials, error)

	// Current returns nil and no error when nothing is stored.
	Current(ctx context.Context) (*domain.Credentials, error)

	Logout(ctx context.Context) error
}
