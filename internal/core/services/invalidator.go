package services

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Invalidator implements the interface.
var _ driving.CacheService = (*Invalidator)(nil)

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// Invalidator drops cache entries for files known to have changed. It
// only speeds things up: the freshness signal in every key already makes
// stale entries unreachable.
type Invalidator struct {
	cache *ContentCache
	root  string
}

// NewInvalidator creates an invalidator for files under root.
func NewInvalidator(cache *ContentCache, root string) *Invalidator {
	return &Invalidator{cache: cache, root: filepath.Clean(root)}
}

// ClearAll removes every Folio cache entry.
func (v *Invalidator) ClearAll(ctx context.Context) (int, error) {
	return v.cache.ClearAll(ctx)
}

// InvalidateForChangedFiles removes the post and listing entries of each
// path's type and slug, plus every submissions listing.
func (v *Invalidator) InvalidateForChangedFiles(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	prefixes := make(map[string]struct{})
	for _, p := range paths {
		postType, slug, ok := v.PathIdentity(p)
		if !ok {
			logger.Debug("invalidate: ignoring %s", p)
			continue
		}
		prefixes[PostPrefix(postType, slug)] = struct{}{}
		prefixes[ArchivePrefix(postType)] = struct{}{}
	}
	prefixes[domain.CacheSubmissionsPrefix] = struct{}{}

	cleared := 0
	var errs []error
	for prefix := range prefixes {
		n, err := v.cache.DeletePrefix(ctx, prefix)
		cleared += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	logger.Debug("invalidate: %d paths, %d entries cleared", len(paths), cleared)
	return cleared, errors.Join(errs...)
}

// PathIdentity derives the content type and canonical slug of a content
// file path. Paths may be absolute under the root or relative to it.
func (v *Invalidator) PathIdentity(path string) (postType, slug string, ok bool) {
	rel := filepath.Clean(path)
	if filepath.IsAbs(rel) {
		r, err := filepath.Rel(v.root, rel)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return "", "", false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)

	segments := strings.Split(rel, "/")
	if len(segments) < 2 || segments[0] == "" || segments[0] == "." {
		return "", "", false
	}
	postType = segments[0]

	base := segments[len(segments)-1]
	slug = strings.TrimSuffix(base, filepath.Ext(base))
	slug = datePrefix.ReplaceAllString(slug, "")
	if slug == "" {
		return "", "", false
	}
	return postType, slug, true
}
