package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// IndexService builds search index files for a content type.
type IndexService interface {
	Build(ctx context.Context, postType, outDir string) (*domain.IndexMetadata, error)
}
