package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SyncService keeps the content root in step with its remote repository.
type SyncService interface {
	// Clone refuses to run when the content root already has files.
	Clone(ctx context.Context, remoteURL string) domain.OperationResult

	ConfigureRemote(ctx context.Context, remoteURL string) domain.OperationResult

	// Pull distinguishes "no changes" from "pulled N changes" from failure.
	Pull(ctx context.Context) domain.OperationResult

	Push(ctx context.Context) domain.OperationResult

	Status(ctx context.Context) domain.SyncStatus

	// HandleInboundEvent pulls for pushes to the tracked branch and ignores
	// the rest.
	HandleInboundEvent(ctx context.Context, event domain.PushEvent) domain.OperationResult
}
