package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// CredentialsStore keeps the signed-in GitHub identity between runs.
type CredentialsStore interface {
	// Save replaces any credential stored under creds.ID.
	Save(ctx context.Context, creds domain.Credentials) error

	// Get returns nil, nil when nothing is stored under id.
	Get(ctx context.Context, id string) (*domain.Credentials, error)

	Delete(ctx context.Context, id string) error
}
