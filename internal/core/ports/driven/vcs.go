package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// VersionControl wraps a git working tree rooted at the content root.
// Implementations are the only place that invokes the git binary. When the
// binary is missing every operation returns domain.ErrVCSUnavailable.
type VersionControl interface {
	// Status never fails; a missing binary reports ToolAvailable false.
	Status(ctx context.Context) domain.VCSStatus

	// CommitFile stages and commits one file. An empty message is replaced
	// with a generated one.
	CommitFile(ctx context.Context, path, message string) error

	// CommitFiles stages and commits several files in one commit.
	CommitFiles(ctx context.Context, paths []string, message string) error

	// History returns up to limit commits, most recent first.
	History(ctx context.Context, limit int) ([]domain.Commit, error)

	// CommitDetails returns the commit with files and diff, or nil and no
	// error when the hash is unknown.
	CommitDetails(ctx context.Context, hash string) (*domain.Commit, error)

	// Rollback restores path as of hash and commits the restoration. With an
	// empty path it hard-resets the whole tree to hash, discarding every
	// later commit. That form is irreversible.
	Rollback(ctx context.Context, path, hash string) error

	// ChangedFiles lists paths that differ between hash and HEAD.
	ChangedFiles(ctx context.Context, hash string) ([]string, error)

	// Clone clones url into the content root, which must be empty.
	Clone(ctx context.Context, url, branch string) error

	// ConfigureRemote sets the origin URL.
	ConfigureRemote(ctx context.Context, url string) error

	// RemoteURL returns the origin URL, or "" when unset.
	RemoteURL(ctx context.Context) (string, error)

	// Pull fast-forwards from origin and returns the changed paths.
	Pull(ctx context.Context, branch string) ([]string, error)

	// Push pushes the branch to origin.
	Push(ctx context.Context, branch string) error

	// RemoteCounts fetches origin and counts commits each side is ahead.
	RemoteCounts(ctx context.Context, branch string) (domain.RemoteCounts, error)
}
