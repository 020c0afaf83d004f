package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type mockContentService struct {
	posts   []domain.Post
	queries []domain.Query
	err     error
}

func (m *mockContentService) Query(_ context.Context, q domain.Query) (*domain.PostList, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.PostList{
		Posts:      m.posts,
		FoundCount: len(m.posts),
		PageCount:  domain.PageCountFor(len(m.posts), q.Normalize().PageSize),
	}, nil
}

func (m *mockContentService) Get(_ context.Context, postType, slug string) (*domain.Post, error) {
	for _, p := range m.posts {
		if p.Type == postType && p.Slug == slug {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockContentService) Types(_ context.Context) ([]string, error) {
	return []string{"posts"}, nil
}

type mockCacheService struct {
	cleared     bool
	invalidated []string
}

func (m *mockCacheService) ClearAll(_ context.Context) (int, error) {
	m.cleared = true
	return 7, nil
}

func (m *mockCacheService) InvalidateForChangedFiles(_ context.Context, paths []string) (int, error) {
	m.invalidated = append(m.invalidated, paths...)
	return len(paths) * 2, nil
}

type mockExportService struct {
	started   []domain.ExportRequest
	job       *domain.ExportJob
	progress  domain.JobProgress
	cancelled []string
	active    []domain.ExportJob
	startErr  error
	cancelErr error
}

func (m *mockExportService) Start(_ context.Context, req domain.ExportRequest) (*domain.ExportJob, error) {
	m.started = append(m.started, req)
	if m.startErr != nil {
		return nil, m.startErr
	}
	return m.job, nil
}

func (m *mockExportService) RunBatch(_ context.Context, _ string) (*domain.ExportJob, error) {
	return m.job, nil
}

func (m *mockExportService) Cancel(_ context.Context, jobID string) error {
	m.cancelled = append(m.cancelled, jobID)
	return m.cancelErr
}

func (m *mockExportService) Status(_ context.Context, jobID string) domain.JobProgress {
	if m.progress.JobID != jobID {
		return domain.JobProgress{JobID: jobID, Status: domain.JobNotFound}
	}
	return m.progress
}

func (m *mockExportService) ActiveJobs(_ context.Context) ([]domain.ExportJob, error) {
	return m.active, nil
}

func (m *mockExportService) RunToCompletion(
	_ context.Context, _ string, onBatch func(domain.JobProgress),
) (*domain.ExportJob, error) {
	job := *m.job
	job.Status = domain.JobCompleted
	job.Processed = job.Total()
	job.Successful = job.Total()
	if onBatch != nil {
		onBatch(job.Progress())
	}
	return &job, nil
}

type mockVersionService struct {
	commits      []domain.Commit
	rollbacks    [][2]string
	committed    []string
	rollbackConf []bool
}

func (m *mockVersionService) Status(_ context.Context) domain.VCSStatus {
	return domain.VCSStatus{ToolAvailable: true, RepoInitialized: true}
}

func (m *mockVersionService) History(_ context.Context, limit int) ([]domain.Commit, error) {
	if limit < len(m.commits) {
		return m.commits[:limit], nil
	}
	return m.commits, nil
}

func (m *mockVersionService) CommitDetails(_ context.Context, hash string) (*domain.Commit, error) {
	for _, c := range m.commits {
		if strings.HasPrefix(c.Hash, hash) {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockVersionService) CommitFile(_ context.Context, path, _ string) domain.OperationResult {
	m.committed = append(m.committed, path)
	return domain.Succeeded("Committed " + path)
}

func (m *mockVersionService) Rollback(_ context.Context, path, hash string, confirm bool) domain.OperationResult {
	m.rollbacks = append(m.rollbacks, [2]string{path, hash})
	m.rollbackConf = append(m.rollbackConf, confirm)
	return domain.Succeeded("Rolled back to " + hash)
}

type mockSyncService struct {
	calls  []string
	status domain.SyncStatus
	result domain.OperationResult
}

func (m *mockSyncService) record(call string) domain.OperationResult {
	m.calls = append(m.calls, call)
	return m.result
}

func (m *mockSyncService) Clone(_ context.Context, url string) domain.OperationResult {
	return m.record("clone " + url)
}

func (m *mockSyncService) ConfigureRemote(_ context.Context, url string) domain.OperationResult {
	return m.record("remote " + url)
}

func (m *mockSyncService) Pull(_ context.Context) domain.OperationResult { return m.record("pull") }

func (m *mockSyncService) Push(_ context.Context) domain.OperationResult { return m.record("push") }

func (m *mockSyncService) Status(_ context.Context) domain.SyncStatus { return m.status }

func (m *mockSyncService) HandleInboundEvent(_ context.Context, e domain.PushEvent) domain.OperationResult {
	return m.record("event " + e.Ref)
}

type mockPullRequestService struct {
	prs     []domain.PullRequest
	files   []domain.PRFile
	opts    domain.PRListOptions
	merged  []int
	closed  []int
	result  domain.OperationResult
	listErr error
}

func (m *mockPullRequestService) List(_ context.Context, opts domain.PRListOptions) ([]domain.PullRequest, error) {
	m.opts = opts
	return m.prs, m.listErr
}

func (m *mockPullRequestService) Get(_ context.Context, number int) (*domain.PullRequest, error) {
	for _, pr := range m.prs {
		if pr.Number == number {
			return &pr, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPullRequestService) Files(_ context.Context, _ int) ([]domain.PRFile, error) {
	return m.files, nil
}

func (m *mockPullRequestService) Merge(_ context.Context, number int, _ bool) domain.OperationResult {
	m.merged = append(m.merged, number)
	return m.result
}

func (m *mockPullRequestService) Close(_ context.Context, number int, _ bool) domain.OperationResult {
	m.closed = append(m.closed, number)
	return m.result
}

type mockSubmissionService struct {
	requests []domain.SubmitRequest
	logins   []string
	prs      []domain.PullRequest
}

func (m *mockSubmissionService) Submit(_ context.Context, req domain.SubmitRequest) domain.OperationResult {
	m.requests = append(m.requests, req)
	return domain.Succeeded("Opened pull request #12")
}

func (m *mockSubmissionService) List(_ context.Context, login string) ([]domain.PullRequest, error) {
	m.logins = append(m.logins, login)
	return m.prs, nil
}

func (m *mockSubmissionService) Invalidate(_ context.Context, _ string) (int, error) {
	return 0, nil
}

type mockAuthService struct {
	current   *domain.Credentials
	saved     []string
	loggedOut bool
}

func (m *mockAuthService) StartAuthorization(redirectURI string) (*domain.AuthorizationRequest, error) {
	return &domain.AuthorizationRequest{URL: "https://github.com/login", State: "s", RedirectURI: redirectURI}, nil
}

func (m *mockAuthService) CompleteAuthorization(
	_ context.Context, _ *domain.AuthorizationRequest, _ string,
) (*domain.Credentials, error) {
	return m.current, nil
}

func (m *mockAuthService) StartDevice(_ context.Context) (*domain.DeviceCode, error) {
	return &domain.DeviceCode{UserCode: "ABCD-1234", VerificationURI: "https://github.com/login/device"}, nil
}

func (m *mockAuthService) CompleteDevice(_ context.Context, _ *domain.DeviceCode) (*domain.Credentials, error) {
	return m.current, nil
}

func (m *mockAuthService) SaveToken(_ context.Context, token string) (*domain.Credentials, error) {
	m.saved = append(m.saved, token)
	return &domain.Credentials{
		AccountIdentifier: "octocat",
		Method:            domain.AuthMethodPAT,
		PAT:               &domain.PATCredentials{Token: token},
	}, nil
}

func (m *mockAuthService) Current(_ context.Context) (*domain.Credentials, error) {
	return m.current, nil
}

func (m *mockAuthService) Logout(_ context.Context) error {
	m.loggedOut = true
	m.current = nil
	return nil
}

type mockSettingsService struct {
	values map[string]string
}

func (m *mockSettingsService) Get() domain.Settings { return domain.DefaultSettings() }

func (m *mockSettingsService) Set(key, value string) error {
	if _, ok := m.values[key]; !ok {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"content.default_type", "content.root", "data_dir", "remote.branch"}
}

func (m *mockSettingsService) Value(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrInvalidInput
	}
	return v, nil
}

type mockIndexService struct {
	calls [][2]string
}

func (m *mockIndexService) Build(_ context.Context, postType, outDir string) (*domain.IndexMetadata, error) {
	m.calls = append(m.calls, [2]string{postType, outDir})
	return &domain.IndexMetadata{PostType: postType, TotalPosts: 3, BuildTimeSeconds: 0.01}, nil
}

type testServices struct {
	content     *mockContentService
	cache       *mockCacheService
	export      *mockExportService
	version     *mockVersionService
	sync        *mockSyncService
	pullRequest *mockPullRequestService
	submission  *mockSubmissionService
	auth        *mockAuthService
	settings    *mockSettingsService
	index       *mockIndexService
}

// setupTestServices installs fresh mocks and restores empty services after
// the test.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		content:     &mockContentService{},
		cache:       &mockCacheService{},
		export:      &mockExportService{},
		version:     &mockVersionService{},
		sync:        &mockSyncService{result: domain.Succeeded("ok")},
		pullRequest: &mockPullRequestService{result: domain.Succeeded("ok")},
		submission:  &mockSubmissionService{},
		auth:        &mockAuthService{},
		settings: &mockSettingsService{values: map[string]string{
			"content.default_type": "posts",
			"content.root":         "/srv/content",
			"data_dir":             "/srv/data",
			"remote.branch":        "main",
		}},
		index: &mockIndexService{},
	}
	SetServices(&Services{
		Content:     ts.content,
		Cache:       ts.cache,
		Export:      ts.export,
		Index:       ts.index,
		Version:     ts.version,
		Sync:        ts.sync,
		PullRequest: ts.pullRequest,
		Submission:  ts.submission,
		Auth:        ts.auth,
		Settings:    ts.settings,
		Resolved:    domain.DefaultSettings(),
	})
	t.Cleanup(func() { SetServices(nil) })
	return ts
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

// executeWithInput runs the root command reading stdin from input.
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between executions.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
