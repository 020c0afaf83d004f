package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ContentRepository reads the content root: one directory per content type
// holding Markdown files.
type ContentRepository interface {
	// Root returns the absolute content root.
	Root() string

	// Types lists type directories under the root. Hidden directories are
	// skipped. It has no side effects.
	Types(ctx context.Context) ([]string, error)

	// ListFiles returns the *.md files directly inside the type directory.
	// A missing directory yields an empty list, not an error.
	ListFiles(ctx context.Context, postType string) ([]domain.ContentFile, error)

	// ReadFile returns the raw bytes of a content file.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// Freshness returns the domain.Freshness token of the type's files.
	Freshness(ctx context.Context, postType string) (string, error)
}

// ContentWriter writes posts out as content files.
type ContentWriter interface {
	// WritePost writes post to {dir}/{type}/{date}-{slug}.md and returns
	// the written path.
	WritePost(ctx context.Context, dir string, post domain.Post) (string, error)
}

// IndexWriter persists search index files.
type IndexWriter interface {
	// WriteIndex writes the index and its metadata file, returning both paths.
	WriteIndex(
		ctx context.Context, dir, postType string,
		entries []domain.IndexEntry, meta domain.IndexMetadata,
	) ([]string, error)
}
