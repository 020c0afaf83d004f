package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// JobStore persists export job records with a TTL. A batch must read the
// record fresh every time; stores never hand out shared pointers.
type JobStore interface {
	// Get returns nil and no error when the job is missing or expired.
	Get(ctx context.Context, id string) (*domain.ExportJob, error)

	// Save writes the job, resetting its expiry to now+ttl.
	Save(ctx context.Context, job *domain.ExportJob, ttl time.Duration) error

	// Delete removes the job. Deleting a missing job is not an error.
	Delete(ctx context.Context, id string) error

	// ListActive returns unexpired jobs with status started.
	ListActive(ctx context.Context) ([]domain.ExportJob, error)
}
