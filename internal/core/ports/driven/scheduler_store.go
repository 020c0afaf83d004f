package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SchedulerStore keeps task schedules and run history, so a restart picks
// up where the last process stopped.
type SchedulerStore interface {
	// GetTask returns nil, nil for an unknown id.
	GetTask(ctx context.Context, id string) (*domain.ScheduledTask, error)
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)
	// SaveTask inserts or replaces by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error
	DeleteTask(ctx context.Context, id string) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error
	// GetTaskHistory is newest first.
	GetTaskHistory(ctx context.Context, id string, limit int) ([]domain.TaskResult, error)
	// PruneHistory drops all but the newest keep results of each task.
	PruneHistory(ctx context.Context, keep int) error
}
