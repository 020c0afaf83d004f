package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure PullRequestService implements the interface.
var _ driving.PullRequestService = (*PullRequestService)(nil)

// PullRequestService wraps the remote pull request API and keeps the local
// content root and cache consistent with merges and closes.
type PullRequestService struct {
	host        driven.PullRequestHost
	cache       *ContentCache
	invalidator driving.CacheService
	sync        driving.SyncService
}

// NewPullRequestService creates a pull request service. sync may be nil, in
// which case merges are not pulled locally.
func NewPullRequestService(
	host driven.PullRequestHost,
	cache *ContentCache,
	invalidator driving.CacheService,
	sync driving.SyncService,
) *PullRequestService {
	return &PullRequestService{host: host, cache: cache, invalidator: invalidator, sync: sync}
}

// List returns pull requests matching opts.
func (s *PullRequestService) List(ctx context.Context, opts domain.PRListOptions) ([]domain.PullRequest, error) {
	prs, err := s.host.ListPullRequests(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}
	return prs, nil
}

// Get returns one pull request.
func (s *PullRequestService) Get(ctx context.Context, number int) (*domain.PullRequest, error) {
	pr, err := s.host.GetPullRequest(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("get pull request #%d: %w", number, err)
	}
	return pr, nil
}

// Files returns the files changed by a pull request.
func (s *PullRequestService) Files(ctx context.Context, number int) ([]domain.PRFile, error) {
	files, err := s.host.GetPullRequestFiles(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("pull request #%d files: %w", number, err)
	}
	return files, nil
}

// Merge merges a pull request, invalidates its files and every submissions
// listing, then pulls the result into the content root.
func (s *PullRequestService) Merge(ctx context.Context, number int, confirm bool) domain.OperationResult {
	if !confirm {
		return domain.Failed(domain.ErrConfirmationRequired)
	}

	files, err := s.host.GetPullRequestFiles(ctx, number)
	if err != nil {
		return domain.Failed(err)
	}

	merged, err := s.host.MergePullRequest(ctx, number, "")
	if err != nil {
		return domain.Failed(err)
	}
	if !merged.Merged {
		return domain.Failed(&domain.RemoteError{StatusCode: 405, Message: merged.Message})
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Filename)
	}

	res := domain.Succeeded(fmt.Sprintf("Merged #%d", number))
	if merged.SHA != "" {
		res.Message = fmt.Sprintf("Merged #%d (%s)", number, (&domain.Commit{Hash: merged.SHA}).ShortHash())
	}
	res.Files = paths
	res.Cleared = s.invalidate(ctx, paths)

	if s.sync != nil {
		pull := s.sync.Pull(ctx)
		res.Changes = pull.Changes
		res.Cleared += pull.Cleared
		if !pull.Success {
			res.Message += "; local pull failed: " + pull.Message
		}
	}
	logger.Info("pr: %s", res.Message)
	return res
}

// Close closes a pull request without merging and invalidates submissions.
func (s *PullRequestService) Close(ctx context.Context, number int, confirm bool) domain.OperationResult {
	if !confirm {
		return domain.Failed(domain.ErrConfirmationRequired)
	}
	if err := s.host.ClosePullRequest(ctx, number); err != nil {
		return domain.Failed(err)
	}
	res := domain.Succeeded(fmt.Sprintf("Closed #%d", number))
	res.Cleared = s.clearSubmissions(ctx)
	return res
}

func (s *PullRequestService) invalidate(ctx context.Context, paths []string) int {
	if len(paths) == 0 || s.invalidator == nil {
		return s.clearSubmissions(ctx)
	}
	n, err := s.invalidator.InvalidateForChangedFiles(ctx, paths)
	if err != nil {
		logger.Warn("pr: invalidate: %v", err)
	}
	return n
}

func (s *PullRequestService) clearSubmissions(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}
	n, err := s.cache.DeletePrefix(ctx, domain.CacheSubmissionsPrefix)
	if err != nil {
		logger.Warn("pr: clear submissions: %v", err)
	}
	return n
}
