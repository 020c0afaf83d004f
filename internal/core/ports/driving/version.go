package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// VersionService exposes content history.
type VersionService interface {
	Status(ctx context.Context) domain.VCSStatus

	History(ctx context.Context, limit int) ([]domain.Commit, error)

	// CommitDetails returns nil and no error for unknown hashes.
	CommitDetails(ctx context.Context, hash string) (*domain.Commit, error)

	CommitFile(ctx context.Context, path, message string) domain.OperationResult

	// Rollback restores one file, or with an empty path hard-resets the
	// whole tree. The whole-tree form refuses to run unless confirm is set.
	Rollback(ctx context.Context, path, hash string, confirm bool) domain.OperationResult
}
