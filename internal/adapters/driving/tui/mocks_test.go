package tui

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type mockContentService struct {
	posts []domain.Post
}

func (m *mockContentService) Query(_ context.Context, q domain.Query) (*domain.PostList, error) {
	return &domain.PostList{
		Posts:      m.posts,
		FoundCount: len(m.posts),
		PageCount:  domain.PageCountFor(len(m.posts), q.PageSize),
	}, nil
}

func (m *mockContentService) Get(_ context.Context, _, slug string) (*domain.Post, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockContentService) Types(_ context.Context) ([]string, error) {
	return []string{"posts"}, nil
}

type mockExportService struct {
	progress domain.JobProgress
}

func (m *mockExportService) Start(_ context.Context, _ domain.ExportRequest) (*domain.ExportJob, error) {
	return nil, nil
}

func (m *mockExportService) RunBatch(_ context.Context, _ string) (*domain.ExportJob, error) {
	return nil, nil
}

func (m *mockExportService) Cancel(_ context.Context, _ string) error { return nil }

func (m *mockExportService) Status(_ context.Context, _ string) domain.JobProgress {
	return m.progress
}

func (m *mockExportService) ActiveJobs(_ context.Context) ([]domain.ExportJob, error) {
	return nil, nil
}

func (m *mockExportService) RunToCompletion(
	_ context.Context, _ string, _ func(domain.JobProgress),
) (*domain.ExportJob, error) {
	return nil, nil
}

type mockVersionService struct {
	commits []domain.Commit
}

func (m *mockVersionService) Status(_ context.Context) domain.VCSStatus { return domain.VCSStatus{} }

func (m *mockVersionService) History(_ context.Context, _ int) ([]domain.Commit, error) {
	return m.commits, nil
}

func (m *mockVersionService) CommitDetails(_ context.Context, _ string) (*domain.Commit, error) {
	return nil, nil
}

func (m *mockVersionService) CommitFile(_ context.Context, _, _ string) domain.OperationResult {
	return domain.OperationResult{}
}

func (m *mockVersionService) Rollback(_ context.Context, _, _ string, _ bool) domain.OperationResult {
	return domain.OperationResult{}
}
