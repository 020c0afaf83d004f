package driving

import "context"

// Scheduler runs background tasks: export batches and remote pulls.
type Scheduler interface {
	// Start blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop waits for running tasks to finish.
	Stop() error
}
