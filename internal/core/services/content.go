package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ContentService implements the interface.
var _ driving.ContentService = (*ContentService)(nil)

// ContentService is the read path: stored posts from the post store with
// file-backed posts merged over them.
type ContentService struct {
	registry    *LoaderRegistry
	interceptor *Interceptor
	posts       driven.PostStore
	defaultType string
}

// NewContentService creates a content service.
func NewContentService(
	registry *LoaderRegistry,
	interceptor *Interceptor,
	posts driven.PostStore,
	defaultType string,
) *ContentService {
	if defaultType == "" {
		defaultType = domain.DefaultPostType
	}
	return &ContentService{
		registry:    registry,
		interceptor: interceptor,
		posts:       posts,
		defaultType: defaultType,
	}
}

// Bootstrap registers loaders for every type directory present at startup.
// Types that appear later are registered on first query.
func (s *ContentService) Bootstrap(ctx context.Context) error {
	types, err := s.registry.DiscoverTypes(ctx)
	if err != nil {
		return err
	}
	s.registry.Register(types)
	logger.Info("registered %d content types", len(types))
	return nil
}

// Query returns one page of posts for q.
func (s *ContentService) Query(ctx context.Context, q domain.Query) (*domain.PostList, error) {
	q = q.Normalize()
	if q.Type == "" && q.Main {
		q.Type = s.defaultType
	}
	if q.Type == "" {
		return nil, fmt.Errorf("%w: content type is required", domain.ErrInvalidInput)
	}

	return s.interceptor.Intercept(ctx, s.posts, q)
}

// Get returns a post by type and slug. File posts win over stored posts.
func (s *ContentService) Get(ctx context.Context, postType, slug string) (*domain.Post, error) {
	if postType == "" {
		postType = s.defaultType
	}

	vp, err := s.registry.Loader(postType).Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", postType, slug, err)
	}
	if vp != nil {
		p := vp.ToPost()
		return &p, nil
	}

	p, err := s.posts.Get(ctx, postType, slug)
	if err != nil {
		return nil, fmt.Errorf("get stored post: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%s/%s: %w", postType, slug, domain.ErrNotFound)
	}
	return p, nil
}

// Types lists content types from directories and stored posts.
func (s *ContentService) Types(ctx context.Context) ([]string, error) {
	dirs, err := s.registry.DiscoverTypes(ctx)
	if err != nil {
		return nil, err
	}
	stored, err := s.posts.Types(ctx)
	if err != nil {
		return nil, fmt.Errorf("stored types: %w", err)
	}

	set := make(map[string]struct{}, len(dirs)+len(stored))
	for _, t := range dirs {
		set[t] = struct{}{}
	}
	for _, t := range stored {
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}
