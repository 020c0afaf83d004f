package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/frontmatter"
	"github.com/custodia-labs/folio/internal/logger"
)

// dateLayouts are tried in order when parsing date and modified fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoaderDeps are shared by every PostLoader.
type LoaderDeps struct {
	Repo     driven.ContentRepository
	Renderer driven.Renderer
	Cache    *ContentCache
	// Authors may be nil, in which case every post gets DefaultAuthorID.
	Authors         driven.AuthorDirectory
	DefaultAuthorID int64
}

// PostLoader turns the files of one content type into virtual posts.
type PostLoader struct {
	postType string
	deps     LoaderDeps
}

// NewPostLoader creates the loader for postType.
func NewPostLoader(postType string, deps LoaderDeps) *PostLoader {
	return &PostLoader{postType: postType, deps: deps}
}

// Type returns the content type served by this loader.
func (l *PostLoader) Type() string {
	return l.postType
}

// Load answers q from cache, or scans, parses, filters, sorts and
// paginates the type's files and caches the result. Totals always describe
// the filtered set.
func (l *PostLoader) Load(ctx context.Context, q domain.Query) (*domain.PostList, error) {
	q = q.Normalize()

	key := l.deps.Cache.BuildContentKey(ctx, l.postType, q)
	if entry, ok := l.deps.Cache.Get(ctx, key); ok {
		logger.Debug("loader %s: cache hit %s", l.postType, key)
		return listFromEntry(entry), nil
	}

	posts, err := l.Posts(ctx)
	if err != nil {
		return nil, err
	}

	filtered := posts[:0]
	for _, p := range posts {
		if q.Status != domain.StatusAny && p.Status != q.Status {
			continue
		}
		if q.Slug != "" && p.Slug != q.Slug {
			continue
		}
		if !domain.MatchesSearch(p.Title, p.Markdown, q.Search) {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].EffectiveDate().After(filtered[j].EffectiveDate())
	})

	entry := &domain.CacheEntry{
		Posts:      paginate(filtered, q.Page, q.PageSize),
		FoundCount: len(filtered),
		PageCount:  domain.PageCountFor(len(filtered), q.PageSize),
	}
	if err := l.deps.Cache.Set(ctx, key, entry); err != nil {
		logger.Warn("loader %s: %v", l.postType, err)
	}
	return listFromEntry(entry), nil
}

// Get returns the published or unpublished post with slug, or nil when
// no file carries it.
func (l *PostLoader) Get(ctx context.Context, slug string) (*domain.VirtualPost, error) {
	key := l.deps.Cache.BuildPostKey(ctx, l.postType, slug)
	if entry, ok := l.deps.Cache.Get(ctx, key); ok && len(entry.Posts) == 1 {
		return &entry.Posts[0], nil
	}

	posts, err := l.Posts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug != slug {
			continue
		}
		entry := &domain.CacheEntry{Posts: posts[i : i+1], FoundCount: 1, PageCount: 1}
		if err := l.deps.Cache.Set(ctx, key, entry); err != nil {
			logger.Warn("loader %s: %v", l.postType, err)
		}
		return &posts[i], nil
	}
	return nil, nil
}

// Posts parses every valid file of the type without filtering or caching.
// Files missing a title or slug are skipped.
func (l *PostLoader) Posts(ctx context.Context) ([]domain.VirtualPost, error) {
	files, err := l.deps.Repo.ListFiles(ctx, l.postType)
	if err != nil {
		return nil, fmt.Errorf("list %s files: %w", l.postType, err)
	}

	posts := make([]domain.VirtualPost, 0, len(files))
	for _, f := range files {
		raw, err := l.deps.Repo.ReadFile(ctx, f.Path)
		if err != nil {
			logger.Warn("loader %s: read %s: %v", l.postType, f.Path, err)
			continue
		}
		post, err := l.parse(ctx, f, string(raw))
		if errors.Is(err, domain.ErrMissingRequiredField) {
			logger.Debug("loader %s: skip %s: %v", l.postType, f.Path, err)
			continue
		}
		if err != nil {
			logger.Warn("loader %s: parse %s: %v", l.postType, f.Path, err)
			continue
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (l *PostLoader) parse(ctx context.Context, f domain.ContentFile, raw string) (*domain.VirtualPost, error) {
	fm, body := frontmatter.Parse(raw)

	title := fm.GetString(domain.FieldTitle)
	slug := fm.GetString(domain.FieldSlug)
	if title == "" || slug == "" {
		return nil, fmt.Errorf("%w: title and slug are required", domain.ErrMissingRequiredField)
	}

	html, err := l.deps.Renderer.Render(body)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	status := fm.GetString(domain.FieldStatus)
	if status == "" {
		status = domain.StatusPublish
	}

	date := parseDate(fm.GetString(domain.FieldDate))
	if date.IsZero() {
		date = f.ModTime
	}
	modified := parseDate(fm.GetString(domain.FieldModified))
	if modified.IsZero() {
		modified = date
	}

	login := fm.GetString(domain.FieldAuthor)
	return &domain.VirtualPost{
		ID:       domain.VirtualPostID(slug),
		Type:     l.postType,
		Title:    title,
		Slug:     slug,
		Content:  html,
		Markdown: body,
		Excerpt:  fm.GetString(domain.FieldExcerpt),
		Status:   status,
		AuthorID: l.resolveAuthor(ctx, login),
		Date:     date,
		Modified: modified,
		Meta: domain.PostMeta{
			Categories:    fm.List(domain.FieldCategories),
			Tags:          fm.List(domain.FieldTags),
			FeaturedImage: fm.GetString(domain.FieldFeaturedImage),
			Custom:        fm.Custom(),
			FilePath:      f.Path,
			AuthorLogin:   login,
		},
	}, nil
}

func (l *PostLoader) resolveAuthor(ctx context.Context, login string) int64 {
	if login == "" {
		return l.deps.DefaultAuthorID
	}
	if id, err := strconv.ParseInt(login, 10, 64); err == nil && id > 0 {
		return id
	}
	if l.deps.Authors == nil {
		return l.deps.DefaultAuthorID
	}
	id, ok, err := l.deps.Authors.ResolveLogin(ctx, login)
	if err != nil {
		logger.Debug("resolve author %q: %v", login, err)
	}
	if err != nil || !ok {
		return l.deps.DefaultAuthorID
	}
	return id
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func paginate(posts []domain.VirtualPost, page, pageSize int) []domain.VirtualPost {
	if pageSize == domain.AllPages {
		return posts
	}
	start := (page - 1) * pageSize
	if start >= len(posts) {
		return []domain.VirtualPost{}
	}
	end := start + pageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}

func listFromEntry(entry *domain.CacheEntry) *domain.PostList {
	list := &domain.PostList{
		Posts:      make([]domain.Post, 0, len(entry.Posts)),
		FoundCount: entry.FoundCount,
		PageCount:  entry.PageCount,
	}
	for i := range entry.Posts {
		list.Posts = append(list.Posts, entry.Posts[i].ToPost())
	}
	return list
}
