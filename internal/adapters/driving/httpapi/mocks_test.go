package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type mockContentService struct {
	list      *domain.PostList
	posts     map[string]domain.Post
	types     []string
	err       error
	lastQuery domain.Query
}

func (m *mockContentService) Query(_ context.Context, q domain.Query) (*domain.PostList, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.list == nil {
		return &domain.PostList{Posts: []domain.Post{}}, nil
	}
	return m.list, nil
}

func (m *mockContentService) Get(_ context.Context, postType, slug string) (*domain.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[postType+"/"+slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *mockContentService) Types(_ context.Context) ([]string, error) {
	return m.types, m.err
}

type mockExportService struct {
	progress map[string]domain.JobProgress
}

func (m *mockExportService) Start(_ context.Context, _ domain.ExportRequest) (*domain.ExportJob, error) {
	return nil, nil
}

func (m *mockExportService) RunBatch(_ context.Context, _ string) (*domain.ExportJob, error) {
	return nil, nil
}

func (m *mockExportService) Cancel(_ context.Context, _ string) error { return nil }

func (m *mockExportService) Status(_ context.Context, jobID string) domain.JobProgress {
	if p, ok := m.progress[jobID]; ok {
		return p
	}
	return domain.JobProgress{JobID: jobID, Status: domain.JobNotFound}
}

func (m *mockExportService) ActiveJobs(_ context.Context) ([]domain.ExportJob, error) {
	return nil, nil
}

func (m *mockExportService) RunToCompletion(
	_ context.Context, _ string, _ func(domain.JobProgress),
) (*domain.ExportJob, error) {
	return nil, nil
}

type mockSyncService struct {
	mu     sync.Mutex
	events []domain.PushEvent
	result domain.OperationResult
}

func (m *mockSyncService) Clone(_ context.Context, _ string) domain.OperationResult {
	return m.result
}

func (m *mockSyncService) ConfigureRemote(_ context.Context, _ string) domain.OperationResult {
	return m.result
}

func (m *mockSyncService) Pull(_ context.Context) domain.OperationResult { return m.result }

func (m *mockSyncService) Push(_ context.Context) domain.OperationResult { return m.result }

func (m *mockSyncService) Status(_ context.Context) domain.SyncStatus { return domain.SyncStatus{} }

func (m *mockSyncService) HandleInboundEvent(_ context.Context, event domain.PushEvent) domain.OperationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.result
}

type mockSubmissionService struct {
	invalidated []string
	cleared     int
}

func (m *mockSubmissionService) Submit(_ context.Context, _ domain.SubmitRequest) domain.OperationResult {
	return domain.Succeeded("")
}

func (m *mockSubmissionService) List(_ context.Context, _ string) ([]domain.PullRequest, error) {
	return nil, nil
}

func (m *mockSubmissionService) Invalidate(_ context.Context, login string) (int, error) {
	m.invalidated = append(m.invalidated, login)
	return m.cleared, nil
}
