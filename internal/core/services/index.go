package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

const indexDateLayout = "2006-01-02 15:04:05"

// IndexService builds the JSON search index of a content type.
type IndexService struct {
	registry *LoaderRegistry
	writer   driven.IndexWriter
	root     string
	now      func() time.Time
}

// NewIndexService creates an index service. Indexes default to root.
func NewIndexService(registry *LoaderRegistry, writer driven.IndexWriter, root string) *IndexService {
	return &IndexService{registry: registry, writer: writer, root: root, now: time.Now}
}

// Build scans every file of postType, whatever its status, and writes the
// index and metadata files to outDir.
func (s *IndexService) Build(ctx context.Context, postType, outDir string) (*domain.IndexMetadata, error) {
	if postType == "" {
		return nil, fmt.Errorf("%w: content type is required", domain.ErrInvalidInput)
	}
	if outDir == "" {
		outDir = s.root
	}
	start := s.now()

	posts, err := s.registry.Loader(postType).Posts(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", postType, err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].EffectiveDate().After(posts[j].EffectiveDate())
	})

	entries := make([]domain.IndexEntry, 0, len(posts))
	for i := range posts {
		entries = append(entries, indexEntry(&posts[i]))
	}

	meta := domain.IndexMetadata{
		GeneratedAt:      s.now().UTC(),
		PostType:         postType,
		TotalPosts:       len(entries),
		BuildTimeSeconds: s.now().Sub(start).Seconds(),
		IndexVersion:     domain.SearchIndexVersion,
	}

	paths, err := s.writer.WriteIndex(ctx, outDir, postType, entries, meta)
	if err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	logger.Info("index %s: %d posts written to %v", postType, meta.TotalPosts, paths)
	return &meta, nil
}

func indexEntry(p *domain.VirtualPost) domain.IndexEntry {
	author := p.Meta.AuthorLogin
	if author == "" {
		author = strconv.FormatInt(p.AuthorID, 10)
	}
	custom := p.Meta.Custom
	if custom == nil {
		custom = map[string]string{}
	}
	return domain.IndexEntry{
		File:       filepath.Base(p.Meta.FilePath),
		Title:      p.Title,
		Slug:       p.Slug,
		Date:       formatIndexDate(p.Date),
		Status:     p.Status,
		Author:     author,
		Excerpt:    p.Excerpt,
		Modified:   formatIndexDate(p.Modified),
		Categories: nonNil(p.Meta.Categories),
		Tags:       nonNil(p.Meta.Tags),
		Custom:     custom,
	}
}

func formatIndexDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(indexDateLayout)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
