package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Interceptor substitutes file-backed posts into display listings.
// It holds no per-request state.
type Interceptor struct {
	registry    *LoaderRegistry
	defaultType string
}

// NewInterceptor creates an interceptor over registry.
func NewInterceptor(registry *LoaderRegistry, defaultType string) *Interceptor {
	if defaultType == "" {
		defaultType = domain.DefaultPostType
	}
	return &Interceptor{registry: registry, defaultType: defaultType}
}

// Intercept answers q as one listing: every matching file post in loader
// order, then the stored posts no file post claims, paginated together. A
// slug appears once across all pages and FoundCount is files plus unclaimed
// stored posts.
//
// A nil stored means the store is not consulted. Admin and export queries,
// and types without file posts, are answered by stored alone.
func (i *Interceptor) Intercept(ctx context.Context, stored driven.PostStore, q domain.Query) (*domain.PostList, error) {
	q = q.Normalize()
	postType := i.resolveType(q)
	if q.Mode != domain.ModeDisplay || postType == "" {
		return storedPage(ctx, stored, q)
	}

	all := q
	all.Type, all.Page, all.PageSize = postType, 1, domain.AllPages
	files, err := i.registry.Loader(postType).Load(ctx, all)
	if err != nil {
		logger.Warn("load %s, serving stored posts only: %v", postType, err)
		return storedPage(ctx, stored, q)
	}
	if len(files.Posts) == 0 {
		return storedPage(ctx, stored, q)
	}
	logger.Debug("intercept %s: %d file posts", postType, len(files.Posts))

	nFiles := len(files.Posts)
	page := &domain.PostList{Posts: files.Posts, FoundCount: nFiles}
	from, to := 0, -1
	if q.PageSize != domain.AllPages {
		offset := (q.Page - 1) * q.PageSize
		end := offset + q.PageSize
		page.Posts = files.Posts[min(offset, nFiles):min(end, nFiles)]
		from, to = max(offset-nFiles, 0), end-nFiles
	}
	if stored == nil {
		page.PageCount = domain.PageCountFor(nFiles, q.PageSize)
		return page, nil
	}

	q.Type = postType
	q.Exclude = make([]string, 0, nFiles)
	for _, p := range files.Posts {
		q.Exclude = append(q.Exclude, p.Slug)
	}
	rest, err := storedWindow(ctx, stored, q, from, to)
	if err != nil {
		return nil, err
	}
	return Merge(page, rest, q.PageSize), nil
}

// storedWindow returns stored posts [from, to) of the filtered set with the
// set's total, reading at most the two store pages the window spans. With
// AllPages it returns the whole set.
func storedWindow(ctx context.Context, stored driven.PostStore, q domain.Query, from, to int) (*domain.PostList, error) {
	size := q.PageSize
	if size == domain.AllPages {
		return storedPage(ctx, stored, q)
	}
	if to <= from {
		q.Page, q.PageSize = 1, 1
		_, total, err := stored.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("count stored posts: %w", err)
		}
		return &domain.PostList{FoundCount: total}, nil
	}

	first, last := from/size+1, (to-1)/size+1
	window := &domain.PostList{}
	for page := first; page <= last; page++ {
		q.Page = page
		posts, total, err := stored.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("query stored posts: %w", err)
		}
		window.Posts = append(window.Posts, posts...)
		window.FoundCount = total
	}

	skip := from - (first-1)*size
	if skip >= len(window.Posts) {
		window.Posts = nil
		return window, nil
	}
	window.Posts = window.Posts[skip:min(skip+to-from, len(window.Posts))]
	return window, nil
}

func storedPage(ctx context.Context, stored driven.PostStore, q domain.Query) (*domain.PostList, error) {
	if stored == nil {
		return &domain.PostList{Posts: []domain.Post{}}, nil
	}
	posts, total, err := stored.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query stored posts: %w", err)
	}
	return &domain.PostList{
		Posts:      posts,
		FoundCount: total,
		PageCount:  domain.PageCountFor(total, q.PageSize),
	}, nil
}

func (i *Interceptor) resolveType(q domain.Query) string {
	if q.Type != "" {
		return q.Type
	}
	if q.Main {
		return i.defaultType
	}
	return ""
}

// Merge puts file posts first, then stored posts whose slug no file post
// has claimed. Totals add up with duplicates removed.
func Merge(files, stored *domain.PostList, pageSize int) *domain.PostList {
	if stored == nil {
		return files
	}

	seen := make(map[string]struct{}, len(files.Posts))
	merged := make([]domain.Post, 0, len(files.Posts)+len(stored.Posts))
	for _, p := range files.Posts {
		seen[p.Slug] = struct{}{}
		merged = append(merged, p)
	}

	skipped := 0
	for _, p := range stored.Posts {
		if _, dup := seen[p.Slug]; dup {
			skipped++
			continue
		}
		merged = append(merged, p)
	}

	found := files.FoundCount + stored.FoundCount - skipped
	return &domain.PostList{
		Posts:      merged,
		FoundCount: found,
		PageCount:  domain.PageCountFor(found, pageSize),
	}
}
