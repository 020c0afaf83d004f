package services

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/frontmatter"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure SubmissionService implements the interface.
var _ driving.SubmissionService = (*SubmissionService)(nil)

var branchUnsafe = regexp.MustCompile(`[^A-Za-z0-9._/-]+`)

// SubmissionService turns content edits into pull requests.
type SubmissionService struct {
	host     driven.PullRequestHost
	repo     driven.ContentRepository
	registry *LoaderRegistry
	cache    *ContentCache
	base     string
	now      func() time.Time
}

// NewSubmissionService creates a submission service targeting base.
func NewSubmissionService(
	host driven.PullRequestHost,
	repo driven.ContentRepository,
	registry *LoaderRegistry,
	cache *ContentCache,
	base string,
) *SubmissionService {
	if base == "" {
		base = "main"
	}
	return &SubmissionService{
		host:     host,
		repo:     repo,
		registry: registry,
		cache:    cache,
		base:     base,
		now:      time.Now,
	}
}

// Submit rewrites a post's title or body and opens a pull request with
// the change.
func (s *SubmissionService) Submit(ctx context.Context, req domain.SubmitRequest) domain.OperationResult {
	if req.Type == "" || req.Slug == "" {
		return domain.Failed(fmt.Errorf("%w: type and slug are required", domain.ErrInvalidInput))
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Body) == "" {
		return domain.Failed(fmt.Errorf("%w: edit is empty", domain.ErrInvalidInput))
	}

	login := req.Login
	if login == "" {
		current, err := s.host.CurrentUser(ctx)
		if err != nil {
			return domain.Failed(err)
		}
		login = current
	}

	post, err := s.registry.Loader(req.Type).Get(ctx, req.Slug)
	if err != nil {
		return domain.Failed(err)
	}
	if post == nil || post.Meta.FilePath == "" {
		return domain.Failed(fmt.Errorf("%s/%s: %w", req.Type, req.Slug, domain.ErrNotFound))
	}

	raw, err := s.repo.ReadFile(ctx, post.Meta.FilePath)
	if err != nil {
		return domain.Failed(fmt.Errorf("read %s: %w", post.Meta.FilePath, err))
	}
	fm, body := frontmatter.Parse(string(raw))
	before := frontmatter.Marshal(fm, body)
	if req.Title != "" {
		fm.Set(domain.FieldTitle, req.Title)
	}
	if req.Body != "" {
		body = req.Body
	}
	updated := frontmatter.Marshal(fm, body)
	if updated == before {
		return domain.Failed(fmt.Errorf("%w: edit does not change the post", domain.ErrInvalidInput))
	}

	rel, err := filepath.Rel(s.repo.Root(), post.Meta.FilePath)
	if err != nil {
		return domain.Failed(fmt.Errorf("relative path: %w", err))
	}
	rel = filepath.ToSlash(rel)

	title := fm.GetString(domain.FieldTitle)
	message := req.Message
	if message == "" {
		message = fmt.Sprintf("Update %s", rel)
	}

	pr, err := s.host.CreatePullRequest(ctx, domain.NewPullRequest{
		Title:   "Update: " + title,
		Body:    fmt.Sprintf("Edit of `%s` submitted by @%s.\n\n%s", rel, login, req.Message),
		Branch:  s.branchName(login, req.Slug),
		Base:    s.base,
		Path:    rel,
		Content: updated,
		Message: message,
	})
	if err != nil {
		return domain.Failed(err)
	}

	if _, err := s.cache.Delete(ctx, BuildSubmissionsKey(login)); err != nil {
		logger.Warn("submit: invalidate submissions for %s: %v", login, err)
	}

	res := domain.Succeeded(fmt.Sprintf("Opened pull request #%d", pr.Number))
	res.Files = []string{rel}
	return res
}

// List returns login's open submissions, cached until a merge, close or
// new submission invalidates them.
func (s *SubmissionService) List(ctx context.Context, login string) ([]domain.PullRequest, error) {
	if login == "" {
		current, err := s.host.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("current user: %w", err)
		}
		login = current
	}

	key := BuildSubmissionsKey(login)
	if entry, ok := s.cache.Get(ctx, key); ok {
		return entry.Submissions, nil
	}

	prs, err := s.host.ListPullRequests(ctx, domain.PRListOptions{State: "open", Author: login})
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if err := s.cache.Set(ctx, key, &domain.CacheEntry{Submissions: prs}); err != nil {
		logger.Warn("submit: %v", err)
	}
	return prs, nil
}

// Invalidate drops cached submission listings.
func (s *SubmissionService) Invalidate(ctx context.Context, login string) (int, error) {
	if login == "" {
		return s.cache.DeletePrefix(ctx, domain.CacheSubmissionsPrefix)
	}
	return s.cache.Delete(ctx, BuildSubmissionsKey(login))
}

func (s *SubmissionService) branchName(login, slug string) string {
	name := fmt.Sprintf("folio/%s/%s-%d", login, slug, s.now().Unix())
	return branchUnsafe.ReplaceAllString(name, "-")
}
