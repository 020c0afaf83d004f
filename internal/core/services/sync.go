package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// Config keys written by the sync service.
const (
	keyRemoteURL    = "remote.url"
	keyLastSyncTime = "sync.last_sync_time"
)

// SyncService keeps the content root in step with its remote repository.
type SyncService struct {
	vcs         driven.VersionControl
	invalidator driving.CacheService
	config      driven.ConfigStore
	remote      domain.RemoteSettings
	now         func() time.Time
}

// NewSyncService creates a sync service. config may be nil, in which case
// remote URLs and sync times are not persisted.
func NewSyncService(
	vcs driven.VersionControl,
	invalidator driving.CacheService,
	config driven.ConfigStore,
	remote domain.RemoteSettings,
) *SyncService {
	if remote.Branch == "" {
		remote.Branch = "main"
	}
	return &SyncService{
		vcs:         vcs,
		invalidator: invalidator,
		config:      config,
		remote:      remote,
		now:         time.Now,
	}
}

// Clone clones remoteURL, or the configured remote, into the content root.
// It refuses to run when the content root already has files.
func (s *SyncService) Clone(ctx context.Context, remoteURL string) domain.OperationResult {
	if remoteURL == "" {
		remoteURL = s.remote.URL
	}
	if remoteURL == "" {
		return domain.Failed(domain.ErrRemoteNotConfigured)
	}

	if err := s.vcs.Clone(ctx, remoteURL, s.remote.Branch); err != nil {
		if errors.Is(err, domain.ErrDirectoryNotEmpty) {
			return domain.OperationResult{
				Success:  false,
				Message:  "Content directory is not empty. Move existing files away before cloning.",
				Category: domain.CategoryValidation,
			}
		}
		return domain.Failed(err)
	}

	s.saveRemoteURL(remoteURL)
	s.recordSync()

	res := domain.Succeeded("Cloned " + remoteURL)
	if s.invalidator != nil {
		n, err := s.invalidator.ClearAll(ctx)
		if err != nil {
			logger.Warn("sync: clear cache after clone: %v", err)
		}
		res.Cleared = n
	}
	return res
}

// ConfigureRemote sets the origin URL.
func (s *SyncService) ConfigureRemote(ctx context.Context, remoteURL string) domain.OperationResult {
	if remoteURL == "" {
		return domain.Failed(fmt.Errorf("%w: remote URL is required", domain.ErrInvalidInput))
	}
	if err := s.vcs.ConfigureRemote(ctx, remoteURL); err != nil {
		return domain.Failed(err)
	}
	s.saveRemoteURL(remoteURL)
	return domain.Succeeded("Remote set to " + remoteURL)
}

// Pull fast-forwards the content root and invalidates pulled files.
func (s *SyncService) Pull(ctx context.Context) domain.OperationResult {
	files, err := s.vcs.Pull(ctx, s.remote.Branch)
	if err != nil {
		logger.Warn("sync: pull: %v", err)
		return domain.Failed(err)
	}
	s.recordSync()

	if len(files) == 0 {
		return domain.Succeeded("No changes")
	}

	res := domain.Succeeded(fmt.Sprintf("Pulled %d changes", len(files)))
	res.Changes = len(files)
	res.Files = files
	if s.invalidator != nil {
		n, err := s.invalidator.InvalidateForChangedFiles(ctx, files)
		if err != nil {
			logger.Warn("sync: invalidate after pull: %v", err)
		}
		res.Cleared = n
	}
	logger.Info("sync: %s", res.Message)
	return res
}

// Push pushes local commits to the tracked branch.
func (s *SyncService) Push(ctx context.Context) domain.OperationResult {
	if err := s.vcs.Push(ctx, s.remote.Branch); err != nil {
		return domain.Failed(err)
	}
	s.recordSync()
	return domain.Succeeded("Pushed to origin/" + s.remote.Branch)
}

// Status reports remote configuration and divergence. It never fails; an
// unreachable remote reports Connected false.
func (s *SyncService) Status(ctx context.Context) domain.SyncStatus {
	st := domain.SyncStatus{Branch: s.remote.Branch}

	url, err := s.vcs.RemoteURL(ctx)
	if err != nil || url == "" {
		url = s.remote.URL
	}
	st.RemoteURL = url
	st.Configured = url != ""
	st.LastSyncTime = s.lastSync()

	if !st.Configured {
		return st
	}
	counts, err := s.vcs.RemoteCounts(ctx, s.remote.Branch)
	if err != nil {
		logger.Debug("sync: remote counts: %v", err)
		return st
	}
	st.Connected = true
	st.IncomingCount = counts.Incoming
	st.OutgoingCount = counts.Outgoing
	return st
}

// HandleInboundEvent pulls when the push targets the tracked branch.
func (s *SyncService) HandleInboundEvent(ctx context.Context, event domain.PushEvent) domain.OperationResult {
	branch := event.Branch()
	if branch != s.remote.Branch {
		return domain.Succeeded(fmt.Sprintf("Ignored, wrong branch: %s (tracking %s)", branch, s.remote.Branch))
	}
	return s.Pull(ctx)
}

func (s *SyncService) saveRemoteURL(url string) {
	s.remote.URL = url
	if s.config == nil {
		return
	}
	if err := s.config.Set(keyRemoteURL, url); err != nil {
		logger.Warn("sync: save remote url: %v", err)
	}
}

func (s *SyncService) recordSync() {
	if s.config == nil {
		return
	}
	if err := s.config.Set(keyLastSyncTime, s.now().UTC().Format(time.RFC3339)); err != nil {
		logger.Warn("sync: record sync time: %v", err)
	}
}

func (s *SyncService) lastSync() time.Time {
	if s.config == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.config.GetString(keyLastSyncTime))
	if err != nil {
		return time.Time{}
	}
	return t
}
