package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure IndexWriter implements the interface.
var _ driven.IndexWriter = (*IndexWriter)(nil)

// IndexWriter writes search index files as JSON.
type IndexWriter struct{}

// NewIndexWriter creates an index writer.
func NewIndexWriter() *IndexWriter {
	return &IndexWriter{}
}

// IndexPath returns the index file path for postType in dir.
func IndexPath(dir, postType string) string {
	return filepath.Join(dir, postType+"-index.json")
}

// MetaPath returns the index metadata file path for postType in dir.
func MetaPath(dir, postType string) string {
	return filepath.Join(dir, postType+"-index-meta.json")
}

// WriteIndex writes {type}-index.json and {type}-index-meta.json to dir.
// The index is written first so the metadata never describes a missing index.
func (w *IndexWriter) WriteIndex(
	ctx context.Context, dir, postType string,
	entries []domain.IndexEntry, meta domain.IndexMetadata,
) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkSegment("type", postType); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	if entries == nil {
		entries = []domain.IndexEntry{}
	}
	indexPath := IndexPath(dir, postType)
	if err := writeJSON(indexPath, entries); err != nil {
		return nil, err
	}

	metaPath := MetaPath(dir, postType)
	if err := writeJSON(metaPath, meta); err != nil {
		return nil, err
	}
	return []string{indexPath, metaPath}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, string(data)+"\n")
}
