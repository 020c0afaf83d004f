package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService writes stored posts out as content files, one page per
// batch. The persisted job record is the only state shared between batches.
type ExportService struct {
	jobs     driven.JobStore
	posts    driven.PostStore
	writer   driven.ContentWriter
	vcs      driven.VersionControl
	settings domain.Settings
	now      func() time.Time
}

// NewExportService creates an export service. vcs may be nil, in which case
// batches are not committed and push requests are ignored.
func NewExportService(
	jobs driven.JobStore,
	posts driven.PostStore,
	writer driven.ContentWriter,
	vcs driven.VersionControl,
	settings domain.Settings,
) *ExportService {
	return &ExportService{
		jobs:     jobs,
		posts:    posts,
		writer:   writer,
		vcs:      vcs,
		settings: settings,
		now:      time.Now,
	}
}

// Start counts the stored posts of each requested type and persists a new
// job. No files are written until the first batch runs.
func (s *ExportService) Start(ctx context.Context, req domain.ExportRequest) (*domain.ExportJob, error) {
	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = s.settings.Export.BatchSize
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive", domain.ErrInvalidInput)
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.settings.Export.OutputDir
	}
	if outputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", domain.ErrInvalidInput)
	}

	types := req.Types
	if len(types) == 0 {
		stored, err := s.posts.Types(ctx)
		if err != nil {
			return nil, fmt.Errorf("list stored types: %w", err)
		}
		types = stored
	}

	counts := make([]domain.TypeCount, 0, len(types))
	for _, t := range types {
		n, err := s.posts.Count(ctx, t, domain.StatusAny)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		counts = append(counts, domain.TypeCount{Type: t, Total: n})
	}

	now := s.now()
	job := &domain.ExportJob{
		ID:           uuid.NewString(),
		Status:       domain.JobStarted,
		Types:        counts,
		BatchSize:    batchSize,
		OutputDir:    outputDir,
		PushToRemote: req.PushToRemote,
		Page:         1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	job.LastMessage = fmt.Sprintf("Export started: %d posts across %d types", job.Total(), len(counts))

	if err := s.jobs.Save(ctx, job, s.settings.Export.JobTTL); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	logger.Info("export %s: %s", job.ID, job.LastMessage)
	return job, nil
}

// RunBatch exports the page under the job's cursor and advances it. A
// cancelled or finished job is returned untouched.
func (s *ExportService) RunBatch(ctx context.Context, jobID string) (*domain.ExportJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return nil, fmt.Errorf("%s: %w", jobID, domain.ErrJobNotFound)
	}
	if job.Status != domain.JobStarted {
		return job, nil
	}

	skipEmptyTypes(job)
	if job.CurrentType() == "" {
		s.finish(ctx, job)
		return job, s.persist(ctx, job)
	}

	tc := job.Types[job.TypeIndex]
	pages := tc.Pages(job.BatchSize)
	posts, _, err := s.posts.List(ctx, domain.Query{
		Type:     tc.Type,
		Page:     job.Page,
		PageSize: job.BatchSize,
		Status:   domain.StatusAny,
		Mode:     domain.ModeExport,
	})
	if err != nil {
		job.LastMessage = fmt.Sprintf("Failed to read %s page %d: %v", tc.Type, job.Page, err)
		job.UpdatedAt = s.now()
		if perr := s.persist(ctx, job); perr != nil {
			return job, errors.Join(err, perr)
		}
		return job, fmt.Errorf("list %s: %w", tc.Type, err)
	}

	written := make([]string, 0, len(posts))
	for _, p := range posts {
		path, err := s.writer.WritePost(ctx, job.OutputDir, p)
		if err != nil {
			job.Failed++
			logger.Warn("export %s: write %s/%s: %v", job.ID, p.Type, p.Slug, err)
			continue
		}
		job.Successful++
		written = append(written, path)
	}
	job.Processed += len(posts)
	job.Batches++

	s.commit(ctx, job, written, tc.Type, pages)

	job.LastMessage = fmt.Sprintf("Exported %s page %d of %d (%d/%d posts)",
		tc.Type, job.Page, pages, job.Processed, job.Total())
	if job.Page >= pages {
		job.TypeIndex++
		job.Page = 1
	} else {
		job.Page++
	}

	skipEmptyTypes(job)
	if job.CurrentType() == "" {
		s.finish(ctx, job)
	}
	job.UpdatedAt = s.now()

	return job, s.persist(ctx, job)
}

// Cancel marks the job cancelled and removes its record.
func (s *ExportService) Cancel(ctx context.Context, jobID string) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("%s: %w", jobID, domain.ErrJobNotFound)
	}

	job.Status = domain.JobCancelled
	job.LastMessage = "Export cancelled"
	job.UpdatedAt = s.now()
	if err := s.jobs.Save(ctx, job, s.settings.Export.JobTTL); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	logger.Info("export %s: cancelled", jobID)
	return nil
}

// Status reports job progress. A missing job is the terminal not_found state.
func (s *ExportService) Status(ctx context.Context, jobID string) domain.JobProgress {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil || job == nil {
		msg := "Job not found"
		if err != nil {
			msg = fmt.Sprintf("Job not found: %v", err)
		}
		return domain.JobProgress{
			JobID:     jobID,
			Status:    domain.JobNotFound,
			Message:   msg,
			UpdatedAt: s.now(),
		}
	}
	return job.Progress()
}

// ActiveJobs lists jobs that still have batches to run.
func (s *ExportService) ActiveJobs(ctx context.Context) ([]domain.ExportJob, error) {
	return s.jobs.ListActive(ctx)
}

// RunToCompletion runs batches one after another until the job leaves the
// started state. Each step re-reads the job record.
func (s *ExportService) RunToCompletion(
	ctx context.Context, jobID string, onBatch func(domain.JobProgress),
) (*domain.ExportJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		job, err := s.RunBatch(ctx, jobID)
		if err != nil {
			return job, err
		}
		if onBatch != nil {
			onBatch(job.Progress())
		}
		if job.Status != domain.JobStarted {
			return job, nil
		}
	}
}

func (s *ExportService) commit(ctx context.Context, job *domain.ExportJob, paths []string, postType string, pages int) {
	if s.vcs == nil || len(paths) == 0 || !s.vcs.Status(ctx).ToolAvailable {
		return
	}
	msg := fmt.Sprintf("Export %s batch %d/%d", postType, job.Page, pages)
	if err := s.vcs.CommitFiles(ctx, paths, msg); err != nil {
		logger.Warn("export %s: commit: %v", job.ID, err)
	}
}

func (s *ExportService) finish(ctx context.Context, job *domain.ExportJob) {
	job.Status = domain.JobCompleted
	job.LastMessage = fmt.Sprintf("Export completed: %d processed, %d written, %d failed",
		job.Processed, job.Successful, job.Failed)

	if job.PushToRemote && s.vcs != nil {
		if err := s.vcs.Push(ctx, s.settings.Remote.Branch); err != nil {
			job.LastMessage += "; push failed: " + domain.UserMessage(err)
		} else {
			job.LastMessage += "; pushed to remote"
		}
	}
	job.UpdatedAt = s.now()
	logger.Info("export %s: %s", job.ID, job.LastMessage)
}

// persist saves job unless it was cancelled or removed while the batch ran,
// so a cancellation is never overwritten.
func (s *ExportService) persist(ctx context.Context, job *domain.ExportJob) error {
	current, err := s.jobs.Get(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if current == nil || current.Status == domain.JobCancelled {
		job.Status = domain.JobCancelled
		return nil
	}
	if err := s.jobs.Save(ctx, job, s.settings.Export.JobTTL); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func skipEmptyTypes(job *domain.ExportJob) {
	for job.CurrentType() != "" && job.Types[job.TypeIndex].Pages(job.BatchSize) == 0 {
		job.TypeIndex++
		job.Page = 1
	}
}
