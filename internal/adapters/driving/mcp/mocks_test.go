package mcp

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockContentService is a mock implementation of driving.ContentService.
type mockContentService struct {
	list      *domain.PostList
	post      *domain.Post
	types     []string
	err       error
	lastQuery domain.Query
	lastType  string
	lastSlug  string
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
	m.lastType = postType
	m.lastSlug = slug
	if m.err != nil {
		return nil, m.err
	}
	if m.post == nil {
		return nil, domain.ErrNotFound
	}
	return m.post, nil
}

func (m *mockContentService) Types(_ context.Context) ([]string, error) {
	return m.types, m.err
}

// mockVersionService is a mock implementation of driving.VersionService.
type mockVersionService struct {
	commits   []domain.Commit
	status    domain.VCSStatus
	err       error
	lastLimit int
}

func (m *mockVersionService) Status(_ context.Context) domain.VCSStatus {
	return m.status
}

func (m *mockVersionService) History(_ context.Context, limit int) ([]domain.Commit, error) {
	m.lastLimit = limit
	return m.commits, m.err
}

func (m *mockVersionService) CommitDetails(_ context.Context, _ string) (*domain.Commit, error) {
	return nil, m.err
}

func (m *mockVersionService) CommitFile(_ context.Context, _, _ string) domain.OperationResult {
	return domain.Succeeded("committed")
}

func (m *mockVersionService) Rollback(_ context.Context, _, _ string, _ bool) domain.OperationResult {
	return domain.Succeeded("rolled back")
}
