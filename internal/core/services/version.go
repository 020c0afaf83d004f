package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure VersionService implements the interface.
var _ driving.VersionService = (*VersionService)(nil)

// DefaultHistoryLimit applies when History is called with a non-positive limit.
const DefaultHistoryLimit = 20

// VersionService exposes content history and rollback, keeping the cache
// in step with restored files.
type VersionService struct {
	vcs         driven.VersionControl
	invalidator driving.CacheService
}

// NewVersionService creates a version service.
func NewVersionService(vcs driven.VersionControl, invalidator driving.CacheService) *VersionService {
	return &VersionService{vcs: vcs, invalidator: invalidator}
}

// Status reports tool availability and repository state.
func (s *VersionService) Status(ctx context.Context) domain.VCSStatus {
	return s.vcs.Status(ctx)
}

// History returns recent commits, newest first.
func (s *VersionService) History(ctx context.Context, limit int) ([]domain.Commit, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	commits, err := s.vcs.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return commits, nil
}

// CommitDetails returns nil and no error for unknown hashes.
func (s *VersionService) CommitDetails(ctx context.Context, hash string) (*domain.Commit, error) {
	c, err := s.vcs.CommitDetails(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("commit details: %w", err)
	}
	return c, nil
}

// CommitFile commits one content file.
func (s *VersionService) CommitFile(ctx context.Context, path, message string) domain.OperationResult {
	if path == "" {
		return domain.Failed(fmt.Errorf("%w: path is required", domain.ErrInvalidInput))
	}
	if err := s.vcs.CommitFile(ctx, path, message); err != nil {
		return domain.Failed(err)
	}
	res := domain.Succeeded("Committed " + path)
	res.Files = []string{path}
	return res
}

// Rollback restores path as of hash, or the whole tree when path is empty.
// The whole-tree form discards later commits and requires confirm.
func (s *VersionService) Rollback(ctx context.Context, path, hash string, confirm bool) domain.OperationResult {
	if hash == "" {
		return domain.Failed(fmt.Errorf("%w: commit hash is required", domain.ErrInvalidInput))
	}
	if path == "" && !confirm {
		return domain.Failed(domain.ErrConfirmationRequired)
	}

	var affected []string
	if path == "" {
		changed, err := s.vcs.ChangedFiles(ctx, hash)
		if err != nil && !errors.Is(err, domain.ErrVCSUnavailable) {
			logger.Warn("rollback: changed files for %s: %v", hash, err)
		}
		affected = changed
	} else {
		affected = []string{path}
	}

	if err := s.vcs.Rollback(ctx, path, hash); err != nil {
		return domain.Failed(err)
	}

	res := domain.Succeeded(rollbackMessage(path, hash))
	res.Files = affected
	if s.invalidator != nil {
		n, err := s.invalidator.InvalidateForChangedFiles(ctx, affected)
		if err != nil {
			logger.Warn("rollback: invalidate: %v", err)
		}
		res.Cleared = n
	}
	return res
}

func rollbackMessage(path, hash string) string {
	short := (&domain.Commit{Hash: hash}).ShortHash()
	if path == "" {
		return fmt.Sprintf("Reset content to %s", short)
	}
	return fmt.Sprintf("Restored %s to %s", path, short)
}
