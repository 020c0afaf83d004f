package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PullRequestService manages pull requests against the content repository.
type PullRequestService interface {
	List(ctx context.Context, opts domain.PRListOptions) ([]domain.PullRequest, error)

	Get(ctx context.Context, number int) (*domain.PullRequest, error)

	Files(ctx context.Context, number int) ([]domain.PRFile, error)

	// Merge requires confirm. On success the changed files are invalidated
	// and the content root is pulled.
	Merge(ctx context.Context, number int, confirm bool) domain.OperationResult

	// Close requires confirm. Submission listings are invalidated.
	Close(ctx context.Context, number int, confirm bool) domain.OperationResult
}

// SubmissionService proposes content edits as pull requests.
type SubmissionService interface {
	Submit(ctx context.Context, req domain.SubmitRequest) domain.OperationResult

	// List returns the open submissions authored by login.
	List(ctx context.Context, login string) ([]domain.PullRequest, error)

	// Invalidate drops the cached listing of login, or every listing when
	// login is empty.
	Invalidate(ctx context.Context, login string) (int, error)
}
