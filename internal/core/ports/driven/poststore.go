package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PostStore holds stored (non-file) posts. Queries against it are never
// intercepted, so export traversal sees real rows only.
type PostStore interface {
	// List returns one page of posts of q.Type ordered by date descending,
	// honouring status and search, plus the total number of matches.
	List(ctx context.Context, q domain.Query) ([]domain.Post, int, error)

	// Count returns the number of posts of a type. An empty or "any"
	// status counts every status.
	Count(ctx context.Context, postType, status string) (int, error)

	// Types returns every type with at least one stored post.
	Types(ctx context.Context) ([]string, error)

	// Get returns nil and no error when no post has the slug.
	Get(ctx context.Context, postType, slug string) (*domain.Post, error)

	// Save creates or updates a post by type and slug, assigning an ID to
	// new posts.
	Save(ctx context.Context, post *domain.Post) error
}

// AuthorDirectory resolves author logins to identities.
type AuthorDirectory interface {
	// ResolveLogin returns the author ID for login and whether it exists.
	ResolveLogin(ctx context.Context, login string) (int64, bool, error)

	// Get returns nil and no error for an unknown ID.
	Get(ctx context.Context, id int64) (*domain.Author, error)
}
