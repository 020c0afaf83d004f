package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PullRequestHost is the remote pull request API. Errors wrap
// domain.ErrAuthRequired or domain.ErrAuthInvalid when unauthenticated,
// domain.ErrRemoteUnavailable on transport failure, and are a
// *domain.RemoteError when the API rejects the request.
type PullRequestHost interface {
	ListPullRequests(ctx context.Context, opts domain.PRListOptions) ([]domain.PullRequest, error)

	// GetPullRequest wraps domain.ErrNotFound for unknown numbers.
	GetPullRequest(ctx context.Context, number int) (*domain.PullRequest, error)

	GetPullRequestFiles(ctx context.Context, number int) ([]domain.PRFile, error)

	// CreatePullRequest creates the branch, commits the file change on it
	// and opens the pull request.
	CreatePullRequest(ctx context.Context, req domain.NewPullRequest) (*domain.PullRequest, error)

	MergePullRequest(ctx context.Context, number int, message string) (*domain.MergeResult, error)

	ClosePullRequest(ctx context.Context, number int) error

	// CurrentUser returns the login of the authenticated user.
	CurrentUser(ctx context.Context) (string, error)
}
