package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// TokenProvider supplies the bearer token for remote API calls. The remote
// adapter only consumes tokens; it does not know which flow produced them.
type TokenProvider interface {
	// GetToken returns the stored access token, or domain.ErrAuthRequired.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns how the token was obtained.
	AuthMethod(ctx context.Context) domain.AuthMethod

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated(ctx context.Context) bool
}
