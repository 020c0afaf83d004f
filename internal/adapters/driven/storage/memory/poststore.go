package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.PostStore       = (*PostStore)(nil)
	_ driven.AuthorDirectory = (*AuthorDirectory)(nil)
)

// PostStore holds stored posts in insertion order.
type PostStore struct {
	mu     sync.RWMutex
	posts  []domain.Post
	nextID int64
}

// NewPostStore creates an empty post store.
func NewPostStore() *PostStore {
	return &PostStore{nextID: 1}
}

// List returns one page of matching posts, newest first, and the total.
func (s *PostStore) List(_ context.Context, q domain.Query) ([]domain.Post, int, error) {
	q = q.Normalize()
	excluded := make(map[string]bool, len(q.Exclude))
	for _, slug := range q.Exclude {
		excluded[slug] = true
	}

	s.mu.RLock()
	var matched []domain.Post
	for _, p := range s.posts {
		if p.Type != q.Type {
			continue
		}
		if q.Status != domain.StatusAny && p.Status != q.Status {
			continue
		}
		if q.Slug != "" && p.Slug != q.Slug {
			continue
		}
		if excluded[p.Slug] || !domain.MatchesSearch(p.Title, p.Content, q.Search) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := len(matched)
	if q.PageSize == domain.AllPages {
		return matched, total, nil
	}
	start := (q.Page - 1) * q.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Count returns the number of posts of a type. An empty or "any" status
// counts every status.
func (s *PostStore) Count(_ context.Context, postType, status string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.posts {
		if p.Type != postType {
			continue
		}
		if status == "" || status == domain.StatusAny || p.Status == status {
			n++
		}
	}
	return n, nil
}

// Types returns every type with at least one stored post, sorted.
func (s *PostStore) Types(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var types []string
	for _, p := range s.posts {
		if _, ok := seen[p.Type]; ok {
			continue
		}
		seen[p.Type] = struct{}{}
		types = append(types, p.Type)
	}
	sort.Strings(types)
	return types, nil
}

// Get returns nil and no error when no post has the slug.
func (s *PostStore) Get(_ context.Context, postType, slug string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.Type == postType && p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

// Save creates or updates a post by type and slug.
func (s *PostStore) Save(_ context.Context, post *domain.Post) error {
	if post == nil {
		return domain.ErrInvalidInput
	}
	if post.Type == "" || post.Slug == "" || post.Title == "" {
		return domain.ErrMissingRequiredField
	}
	if post.Status == "" {
		post.Status = domain.StatusPublish
	}
	post.Source = domain.SourceDatabase

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].Type == post.Type && s.posts[i].Slug == post.Slug {
			post.ID = s.posts[i].ID
			s.posts[i] = *post
			return nil
		}
	}
	post.ID = s.nextID
	s.nextID++
	s.posts = append(s.posts, *post)
	return nil
}

// AuthorDirectory resolves logins from a fixed list of authors.
type AuthorDirectory struct {
	mu      sync.RWMutex
	authors []domain.Author
}

// NewAuthorDirectory creates a directory holding authors.
func NewAuthorDirectory(authors ...domain.Author) *AuthorDirectory {
	return &AuthorDirectory{authors: append([]domain.Author(nil), authors...)}
}

// ResolveLogin matches logins case-insensitively.
func (d *AuthorDirectory) ResolveLogin(_ context.Context, login string) (int64, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.authors {
		if strings.EqualFold(a.Login, login) {
			return a.ID, true, nil
		}
	}
	return 0, false, nil
}

// Get returns nil and no error for an unknown ID.
func (d *AuthorDirectory) Get(_ context.Context, id int64) (*domain.Author, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.authors {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, nil
}
