package services

import (
	"context"
	"errors"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// mockRepo is an in-memory content root.
type mockRepo struct {
	mu    sync.Mutex
	root  string
	files map[string]map[string]mockFile
	err   error
}

type mockFile struct {
	content string
	mod     time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{root: "/content", files: make(map[string]map[string]mockFile)}
}

func (r *mockRepo) add(postType, name, content string, mod time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.files[postType] == nil {
		r.files[postType] = make(map[string]mockFile)
	}
	r.files[postType][name] = mockFile{content: content, mod: mod}
	return path.Join(r.root, postType, name)
}

func (r *mockRepo) remove(postType, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files[postType], name)
}

func (r *mockRepo) Root() string { return r.root }

func (r *mockRepo) Types(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]string, 0, len(r.files))
	for t := range r.files {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (r *mockRepo) ListFiles(_ context.Context, postType string) ([]domain.ContentFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	names := make([]string, 0, len(r.files[postType]))
	for n := range r.files[postType] {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]domain.ContentFile, 0, len(names))
	for _, n := range names {
		out = append(out, domain.ContentFile{
			Path:    path.Join(r.root, postType, n),
			Type:    postType,
			ModTime: r.files[postType][n].mod,
		})
	}
	return out, nil
}

func (r *mockRepo) ReadFile(_ context.Context, p string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel := strings.TrimPrefix(p, r.root+"/")
	postType, name, _ := strings.Cut(rel, "/")
	f, ok := r.files[postType][name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return []byte(f.content), nil
}

func (r *mockRepo) Freshness(ctx context.Context, postType string) (string, error) {
	files, err := r.ListFiles(ctx, postType)
	if err != nil {
		return "", err
	}
	return domain.Freshness(files), nil
}

// mockCacheStore is a map-backed cache store.
type mockCacheStore struct {
	mu     sync.Mutex
	items  map[string]domain.CacheItem
	getErr error
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{items: make(map[string]domain.CacheItem)}
}

func (m *mockCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	item, ok := m.items[key]
	if !ok || item.Expired(time.Now()) {
		return nil, false, nil
	}
	return item.Value, true, nil
}

func (m *mockCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := domain.CacheItem{Key: key, Value: value}
	if ttl > 0 {
		item.ExpiresAt = time.Now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

func (m *mockCacheStore) Delete(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; !ok {
		return 0, nil
	}
	delete(m.items, key)
	return 1, nil
}

func (m *mockCacheStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
			n++
		}
	}
	return n, nil
}

func (m *mockCacheStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.items))
	for k := range m.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// mockPostStore holds stored posts in memory.
type mockPostStore struct {
	mu    sync.Mutex
	posts []domain.Post
	calls int
}

func (m *mockPostStore) List(_ context.Context, q domain.Query) ([]domain.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	q = q.Normalize()
	var matched []domain.Post
	for _, p := range m.posts {
		if p.Type != q.Type {
			continue
		}
		if q.Status != domain.StatusAny && p.Status != q.Status {
			continue
		}
		if slices.Contains(q.Exclude, p.Slug) || !domain.MatchesSearch(p.Title, p.Content, q.Search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
	total := len(matched)
	if q.PageSize == domain.AllPages {
		return matched, total, nil
	}
	start := (q.Page - 1) * q.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *mockPostStore) Count(_ context.Context, postType, status string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.posts {
		if p.Type == postType && (status == "" || status == domain.StatusAny || p.Status == status) {
			n++
		}
	}
	return n, nil
}

func (m *mockPostStore) Types(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := map[string]struct{}{}
	for _, p := range m.posts {
		set[p.Type] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockPostStore) Get(_ context.Context, postType, slug string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].Type == postType && m.posts[i].Slug == slug {
			p := m.posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockPostStore) Save(_ context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].Type == post.Type && m.posts[i].Slug == post.Slug {
			post.ID = m.posts[i].ID
			m.posts[i] = *post
			return nil
		}
	}
	post.ID = int64(len(m.posts) + 1)
	m.posts = append(m.posts, *post)
	return nil
}

// stubRenderer wraps the body in a paragraph.
type stubRenderer struct{}

func (stubRenderer) Name() string { return "stub" }

func (stubRenderer) Render(md string) (string, error) {
	return "<p>" + strings.TrimSpace(md) + "</p>", nil
}

// mockAuthors resolves logins from a map.
type mockAuthors map[string]int64

func (m mockAuthors) ResolveLogin(_ context.Context, login string) (int64, bool, error) {
	id, ok := m[login]
	return id, ok, nil
}

func (m mockAuthors) Get(_ context.Context, id int64) (*domain.Author, error) {
	for login, aid := range m {
		if aid == id {
			return &domain.Author{ID: id, Login: login}, nil
		}
	}
	return nil, nil
}

// mockJobStore keeps serialised copies so callers never share pointers.
type mockJobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.ExportJob
	ttls map[string]time.Duration
}

func newMockJobStore() *mockJobStore {
	return &mockJobStore{jobs: make(map[string]domain.ExportJob), ttls: make(map[string]time.Duration)}
}

func (m *mockJobStore) Get(_ context.Context, id string) (*domain.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	job.Types = append([]domain.TypeCount(nil), job.Types...)
	return &job, nil
}

func (m *mockJobStore) Save(_ context.Context, job *domain.ExportJob, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	cp.Types = append([]domain.TypeCount(nil), job.Types...)
	m.jobs[job.ID] = cp
	m.ttls[job.ID] = ttl
	return nil
}

func (m *mockJobStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	return nil
}

func (m *mockJobStore) ListActive(_ context.Context) ([]domain.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExportJob
	for _, j := range m.jobs {
		if j.Status == domain.JobStarted {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

// mockWriter records exported posts.
type mockWriter struct {
	mu      sync.Mutex
	written []domain.Post
	failOn  map[string]bool
}

func (m *mockWriter) WritePost(_ context.Context, dir string, post domain.Post) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[post.Slug] {
		return "", errors.New("disk full")
	}
	m.written = append(m.written, post)
	return path.Join(dir, post.Type, post.Date.Format("2006-01-02")+"-"+post.Slug+".md"), nil
}

func (m *mockWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.written)
}

// mockIndexWriter captures the last index written.
type mockIndexWriter struct {
	dir     string
	entries []domain.IndexEntry
	meta    domain.IndexMetadata
	err     error
}

func (m *mockIndexWriter) WriteIndex(
	_ context.Context, dir, postType string, entries []domain.IndexEntry, meta domain.IndexMetadata,
) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.dir = dir
	m.entries = entries
	m.meta = meta
	return []string{
		path.Join(dir, postType+"-index.json"),
		path.Join(dir, postType+"-index-meta.json"),
	}, nil
}

// mockVCS records version control calls.
type mockVCS struct {
	mu        sync.Mutex
	status    domain.VCSStatus
	commits   []domain.Commit
	details   map[string]*domain.Commit
	committed [][]string
	messages  []string
	rollbacks [][2]string
	changed   []string
	pulled    []string
	pullErr   error
	pushErr   error
	cloneErr  error
	cloned    []string
	remoteURL string
	counts    domain.RemoteCounts
	countsErr error
	pushes    int
	pulls     int
	err       error
}

func (m *mockVCS) Status(_ context.Context) domain.VCSStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *mockVCS) CommitFile(ctx context.Context, p, message string) error {
	return m.CommitFiles(ctx, []string{p}, message)
}

func (m *mockVCS) CommitFiles(_ context.Context, paths []string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.committed = append(m.committed, paths)
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockVCS) History(_ context.Context, limit int) ([]domain.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.commits) {
		return m.commits[:limit], nil
	}
	return m.commits, nil
}

func (m *mockVCS) CommitDetails(_ context.Context, hash string) (*domain.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.details[hash], nil
}

func (m *mockVCS) Rollback(_ context.Context, p, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rollbacks = append(m.rollbacks, [2]string{p, hash})
	return nil
}

func (m *mockVCS) ChangedFiles(_ context.Context, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed, m.err
}

func (m *mockVCS) Clone(_ context.Context, url, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cloneErr != nil {
		return m.cloneErr
	}
	m.cloned = append(m.cloned, url)
	m.remoteURL = url
	return nil
}

func (m *mockVCS) ConfigureRemote(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.remoteURL = url
	return nil
}

func (m *mockVCS) RemoteURL(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remoteURL, nil
}

func (m *mockVCS) Pull(_ context.Context, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pulls++
	if m.pullErr != nil {
		return nil, m.pullErr
	}
	return m.pulled, nil
}

func (m *mockVCS) Push(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes++
	return m.pushErr
}

func (m *mockVCS) RemoteCounts(_ context.Context, _ string) (domain.RemoteCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts, m.countsErr
}

// mockPRHost is a scripted pull request host.
type mockPRHost struct {
	mu       sync.Mutex
	prs      map[int]*domain.PullRequest
	files    map[int][]domain.PRFile
	created  []domain.NewPullRequest
	merged   []int
	closed   []int
	listOpts []domain.PRListOptions
	err      error
	mergeRes *domain.MergeResult
	login    string
}

func newMockPRHost() *mockPRHost {
	return &mockPRHost{prs: make(map[int]*domain.PullRequest), files: make(map[int][]domain.PRFile)}
}

func (m *mockPRHost) ListPullRequests(_ context.Context, opts domain.PRListOptions) ([]domain.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listOpts = append(m.listOpts, opts)
	if m.err != nil {
		return nil, m.err
	}
	nums := make([]int, 0, len(m.prs))
	for n := range m.prs {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	var out []domain.PullRequest
	for _, n := range nums {
		pr := m.prs[n]
		if opts.Author != "" && !strings.EqualFold(pr.Author, opts.Author) {
			continue
		}
		out = append(out, *pr)
	}
	return out, nil
}

func (m *mockPRHost) GetPullRequest(_ context.Context, number int) (*domain.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	pr, ok := m.prs[number]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *pr
	return &cp, nil
}

func (m *mockPRHost) GetPullRequestFiles(_ context.Context, number int) ([]domain.PRFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.files[number], nil
}

func (m *mockPRHost) CreatePullRequest(_ context.Context, req domain.NewPullRequest) (*domain.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, req)
	n := 100 + len(m.created)
	pr := &domain.PullRequest{Number: n, Title: req.Title, State: "open", HeadRef: req.Branch, BaseRef: req.Base}
	m.prs[n] = pr
	return pr, nil
}

func (m *mockPRHost) MergePullRequest(_ context.Context, number int, _ string) (*domain.MergeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.merged = append(m.merged, number)
	if m.mergeRes != nil {
		return m.mergeRes, nil
	}
	return &domain.MergeResult{Merged: true, SHA: "abc123", Message: "Pull Request successfully merged"}, nil
}

func (m *mockPRHost) ClosePullRequest(_ context.Context, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.closed = append(m.closed, number)
	return nil
}

func (m *mockPRHost) CurrentUser(_ context.Context) (string, error) {
	return m.login, m.err
}

// mockConfigStore is a map-backed config store.
type mockConfigStore struct {
	mu     sync.Mutex
	values map[string]any
	saves  int
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) GetDuration(key string) time.Duration {
	d, err := time.ParseDuration(m.GetString(key))
	if err != nil {
		return 0
	}
	return d
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	s, _ := v.([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.saves++
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string { return "/tmp/config.toml" }

// mockCredentialsStore holds a single credential slot.
type mockCredentialsStore struct {
	mu    sync.Mutex
	creds map[string]domain.Credentials
}

func newMockCredentialsStore() *mockCredentialsStore {
	return &mockCredentialsStore{creds: make(map[string]domain.Credentials)}
}

func (m *mockCredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[creds.ID] = creds
	return nil
}

func (m *mockCredentialsStore) Get(_ context.Context, id string) (*domain.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *mockCredentialsStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, id)
	return nil
}

// fixture assembles the read path over mocks.
type fixture struct {
	repo        *mockRepo
	store       *mockCacheStore
	cache       *ContentCache
	posts       *mockPostStore
	registry    *LoaderRegistry
	interceptor *Interceptor
	content     *ContentService
	invalidator *Invalidator
}

func newFixture() *fixture {
	f := &fixture{
		repo:  newMockRepo(),
		store: newMockCacheStore(),
		posts: &mockPostStore{},
	}
	f.cache = NewContentCache(f.store, f.repo, time.Hour)
	f.registry = NewLoaderRegistry(LoaderDeps{
		Repo:            f.repo,
		Renderer:        stubRenderer{},
		Cache:           f.cache,
		Authors:         mockAuthors{"alice": 7},
		DefaultAuthorID: 1,
	})
	f.interceptor = NewInterceptor(f.registry, domain.DefaultPostType)
	f.content = NewContentService(f.registry, f.interceptor, f.posts, domain.DefaultPostType)
	f.invalidator = NewInvalidator(f.cache, f.repo.Root())
	return f
}

func postFile(title, slug, date string, extra ...string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: \"" + title + "\"\n")
	b.WriteString("slug: " + slug + "\n")
	if date != "" {
		b.WriteString("date: \"" + date + "\"\n")
	}
	for _, e := range extra {
		b.WriteString(e + "\n")
	}
	b.WriteString("---\n\nBody of " + title + "\n")
	return b.String()
}
