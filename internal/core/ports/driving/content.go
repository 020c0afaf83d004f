package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ContentService answers post listings, merging file-backed and stored posts.
type ContentService interface {
	// Query returns one page of posts for q.
	Query(ctx context.Context, q domain.Query) (*domain.PostList, error)

	// Get returns a single post by type and slug. Files win over stored
	// posts. Returns domain.ErrNotFound when neither has the slug.
	Get(ctx context.Context, postType, slug string) (*domain.Post, error)

	// Types lists content types known from directories and stored posts.
	Types(ctx context.Context) ([]string, error)
}

// CacheService exposes cache maintenance.
type CacheService interface {
	// ClearAll removes every Folio cache entry and returns the count.
	ClearAll(ctx context.Context) (int, error)

	// InvalidateForChangedFiles drops entries affected by the given paths.
	InvalidateForChangedFiles(ctx context.Context, paths []string) (int, error)
}
