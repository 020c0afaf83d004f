package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ExportService runs bulk exports of stored posts to content files as a
// series of independent batches.
type ExportService interface {
	// Start creates and persists a job. No posts are written yet.
	Start(ctx context.Context, req domain.ExportRequest) (*domain.ExportJob, error)

	// RunBatch processes the next page of a job. Returns
	// domain.ErrJobNotFound when the record is gone.
	RunBatch(ctx context.Context, jobID string) (*domain.ExportJob, error)

	// Cancel marks the job cancelled and removes its record.
	Cancel(ctx context.Context, jobID string) error

	// Status reports progress; a missing job yields status not_found.
	Status(ctx context.Context, jobID string) domain.JobProgress

	// ActiveJobs lists jobs that still have batches to run.
	ActiveJobs(ctx context.Context) ([]domain.ExportJob, error)

	// RunToCompletion runs batches back to back until the job finishes,
	// calling onBatch after each one.
	RunToCompletion(ctx context.Context, jobID string, onBatch func(domain.JobProgress)) (*domain.ExportJob, error)
}
