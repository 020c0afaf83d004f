package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// freezeClock pins the store clock and returns a function to move it.
func freezeClock(store *Store, at time.Time) func(time.Duration) {
	now := at
	store.now = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "folio.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsRecordedOnce(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run the initial migration.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var count, version int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*), MAX(version) FROM schema_migrations").Scan(&count, &version))
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, version)

	for _, table := range []string{"cache_entries", "export_jobs", "posts", "authors",
		"credentials", "scheduled_tasks", "task_results"} {
		var name string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.up.sql":    {Data: []byte("SELECT 1;")},
		"002_second.up.sql":   {Data: []byte("SELECT 1;")},
		"001_initial.up.sql":  {Data: []byte("SELECT 1;")},
		"002_second.down.sql": {Data: []byte("SELECT 1;")},
		"notes.up.sql":        {Data: []byte("SELECT 1;")},
	}

	tests := []struct {
		name    string
		current int
		want    []int
	}{
		{"fresh", 0, []int{1, 2, 10}},
		{"partly applied", 2, []int{10}},
		{"up to date", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending, err := pendingMigrations(fsys, tt.current)
			require.NoError(t, err)
			var got []int
			for _, m := range pending {
				got = append(got, m.version)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrate_FailedScriptIsNotRecorded(t *testing.T) {
	store := setupTestStore(t)
	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE widgets (id TEXT); NOT SQL;")},
	}

	require.Error(t, store.migrate(fsys))

	version, err := store.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	var name string
	err = store.db.QueryRow("SELECT name FROM sqlite_master WHERE name = 'widgets'").Scan(&name)
	assert.Error(t, err, "rolled back")
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"/x/folio.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		dsn("/x/folio.db"))
}

func TestNewStore_ForeignKeysEnabled(t *testing.T) {
	store := setupTestStore(t)

	var enabled int
	require.NoError(t, store.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestCacheStore_SetGet(t *testing.T) {
	store := setupTestStore(t)
	cache := store.CacheStore()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "folio:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "folio:a", []byte(`{"v":1}`), time.Hour))
	require.NoError(t, cache.Set(ctx, "folio:a", []byte(`{"v":2}`), time.Hour))

	value, ok, err := cache.Get(ctx, "folio:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, string(value))
}

func TestCacheStore_Expiry(t *testing.T) {
	store := setupTestStore(t)
	advance := freezeClock(store, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	cache := store.CacheStore()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "folio:short", []byte("x"), time.Minute))
	require.NoError(t, cache.Set(ctx, "folio:forever", []byte("y"), 0))

	advance(59 * time.Second)
	_, ok, err := cache.Get(ctx, "folio:short")
	require.NoError(t, err)
	assert.True(t, ok)

	advance(time.Second)
	_, ok, err = cache.Get(ctx, "folio:short")
	require.NoError(t, err)
	assert.False(t, ok, "entry is gone at its expiry instant")

	advance(365 * 24 * time.Hour)
	_, ok, err = cache.Get(ctx, "folio:forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheStore_DeleteAndPrefix(t *testing.T) {
	store := setupTestStore(t)
	cache := store.CacheStore()
	ctx := context.Background()

	keys := []string{
		"folio:archive:posts:1:aaa",
		"folio:archive:posts:2:bbb",
		"folio:archive:pages:1:ccc",
		"folio:post:posts:hello:1",
		"folio:archive:posts%x",
		"other:key",
	}
	for _, k := range keys {
		require.NoError(t, cache.Set(ctx, k, []byte("v"), time.Hour))
	}

	n, err := cache.Delete(ctx, "folio:post:posts:hello:1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = cache.Delete(ctx, "folio:post:posts:hello:1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = cache.DeletePrefix(ctx, "folio:archive:posts:")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "LIKE wildcards in keys are not treated as patterns")

	_, ok, _ := cache.Get(ctx, "folio:archive:posts%x")
	assert.True(t, ok)

	n, err = cache.DeletePrefix(ctx, "folio:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ = cache.Get(ctx, "other:key")
	assert.True(t, ok, "keys outside the namespace survive")
}

func TestJobStore_SaveGetDelete(t *testing.T) {
	store := setupTestStore(t)
	jobs := store.JobStore()
	ctx := context.Background()

	job := &domain.ExportJob{
		ID:        "job-1",
		Status:    domain.JobStarted,
		Types:     []domain.TypeCount{{Type: "posts", Total: 150}},
		BatchSize: 100,
		Page:      1,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, jobs.Save(ctx, job, time.Hour))

	got, err := jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.Types, got.Types)
	assert.Equal(t, 100, got.BatchSize)

	// Mutating the copy must not leak into the stored record.
	got.Types[0].Total = 1
	again, err := jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 150, again.Types[0].Total)

	require.NoError(t, jobs.Delete(ctx, "job-1"))
	require.NoError(t, jobs.Delete(ctx, "job-1"))
	got, err = jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobStore_TTLAndListActive(t *testing.T) {
	store := setupTestStore(t)
	advance := freezeClock(store, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	jobs := store.JobStore()
	ctx := context.Background()

	require.NoError(t, jobs.Save(ctx, &domain.ExportJob{ID: "a", Status: domain.JobStarted}, time.Hour))
	require.NoError(t, jobs.Save(ctx, &domain.ExportJob{ID: "b", Status: domain.JobCompleted}, time.Hour))
	require.NoError(t, jobs.Save(ctx, &domain.ExportJob{ID: "c", Status: domain.JobStarted}, 2*time.Hour))

	active, err := jobs.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	advance(90 * time.Minute)
	got, err := jobs.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got, "expired jobs read as missing")

	active, err = jobs.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "c", active[0].ID)

	assert.ErrorIs(t, jobs.Save(ctx, &domain.ExportJob{}, time.Hour), domain.ErrInvalidInput)
}

func seedStoredPosts(t *testing.T, store *Store, postType string, n int, status string) {
	t.Helper()
	posts := store.PostStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := &domain.Post{
			Type:    postType,
			Slug:    fmt.Sprintf("%s-%03d", postType, i),
			Title:   fmt.Sprintf("Post %d", i),
			Content: fmt.Sprintf("Body of post %d", i),
			Status:  status,
			Date:    base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, posts.Save(context.Background(), p))
	}
}

func TestPostStore_SaveAssignsIDAndUpserts(t *testing.T) {
	store := setupTestStore(t)
	posts := store.PostStore()
	ctx := context.Background()

	p := &domain.Post{
		Type:       "posts",
		Slug:       "hello",
		Title:      "Hello",
		Content:    "<p>Hi</p>",
		Date:       time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		Tags:       []string{"go", "cms"},
		Categories: []string{"news"},
		Custom:     map[string]string{"layout": "wide"},
	}
	require.NoError(t, posts.Save(ctx, p))
	require.NotZero(t, p.ID)
	assert.Equal(t, domain.StatusPublish, p.Status)
	firstID := p.ID

	p.Title = "Hello again"
	require.NoError(t, posts.Save(ctx, p))
	assert.Equal(t, firstID, p.ID)

	got, err := posts.Get(ctx, "posts", "hello")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, []string{"go", "cms"}, got.Tags)
	assert.Equal(t, []string{"news"}, got.Categories)
	assert.Equal(t, "wide", got.Custom["layout"])
	assert.True(t, p.Date.Equal(got.Date))
	assert.Equal(t, domain.SourceDatabase, got.Source)

	missing, err := posts.Get(ctx, "posts", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, posts.Save(ctx, &domain.Post{Type: "posts"}), domain.ErrMissingRequiredField)
}

func TestPostStore_ListPagination(t *testing.T) {
	store := setupTestStore(t)
	seedStoredPosts(t, store, "posts", 25, domain.StatusPublish)
	seedStoredPosts(t, store, "pages", 3, domain.StatusPublish)
	posts := store.PostStore()
	ctx := context.Background()

	page, total, err := posts.List(ctx, domain.Query{Type: "posts", Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, page, 5)
	assert.Equal(t, "posts-004", page[0].Slug, "newest first")
	assert.Equal(t, "posts-000", page[4].Slug)

	all, total, err := posts.List(ctx, domain.Query{Type: "posts", PageSize: domain.AllPages})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, all, 25)

	beyond, total, err := posts.List(ctx, domain.Query{Type: "posts", Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, beyond)
}

func TestPostStore_ListFilters(t *testing.T) {
	store := setupTestStore(t)
	seedStoredPosts(t, store, "posts", 4, domain.StatusPublish)
	posts := store.PostStore()
	ctx := context.Background()
	require.NoError(t, posts.Save(ctx, &domain.Post{
		Type: "posts", Slug: "wip", Title: "Work 100% in progress", Status: domain.StatusDraft,
	}))

	tests := []struct {
		name  string
		query domain.Query
		want  int
	}{
		{"default status is publish", domain.Query{Type: "posts"}, 4},
		{"draft only", domain.Query{Type: "posts", Status: domain.StatusDraft}, 1},
		{"any status", domain.Query{Type: "posts", Status: domain.StatusAny}, 5},
		{"search is case-insensitive", domain.Query{Type: "posts", Search: "BODY OF POST 2"}, 1},
		{"percent matches literally", domain.Query{Type: "posts", Search: "100%", Status: domain.StatusAny}, 1},
		{"underscore matches literally", domain.Query{Type: "posts", Search: "post_1"}, 0},
		{"slug", domain.Query{Type: "posts", Slug: "posts-002"}, 1},
		{"excluded slugs", domain.Query{Type: "posts", Exclude: []string{"posts-001", "posts-003", "gone"}}, 2},
		{"excluded draft", domain.Query{Type: "posts", Status: domain.StatusAny, Exclude: []string{"wip"}}, 4},
		{"unknown type", domain.Query{Type: "nothing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, total, err := posts.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
			assert.Len(t, page, tt.want)
		})
	}
}

func TestPostStore_CountAndTypes(t *testing.T) {
	store := setupTestStore(t)
	seedStoredPosts(t, store, "posts", 3, domain.StatusPublish)
	seedStoredPosts(t, store, "notes", 2, domain.StatusDraft)
	posts := store.PostStore()
	ctx := context.Background()

	n, err := posts.Count(ctx, "notes", domain.StatusAny)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = posts.Count(ctx, "notes", domain.StatusPublish)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = posts.Count(ctx, "posts", "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	types, err := posts.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes", "posts"}, types)
}

func TestAuthorStore(t *testing.T) {
	store := setupTestStore(t)
	authors := store.Authors()
	ctx := context.Background()

	alice := &domain.Author{Login: "alice", DisplayName: "Alice"}
	require.NoError(t, authors.Save(ctx, alice))
	require.NotZero(t, alice.ID)

	renamed := &domain.Author{Login: "Alice", DisplayName: "Alice A."}
	require.NoError(t, authors.Save(ctx, renamed))
	assert.Equal(t, alice.ID, renamed.ID)

	id, ok, err := authors.ResolveLogin(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, alice.ID, id)

	_, ok, err = authors.ResolveLogin(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := authors.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice A.", got.DisplayName)

	got, err = authors.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	list, err := authors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, authors.Save(ctx, &domain.Author{Login: " "}), domain.ErrMissingRequiredField)
}

func TestCredentialsStore(t *testing.T) {
	store := setupTestStore(t)
	creds := store.CredentialsStore()
	ctx := context.Background()

	got, err := creds.Get(ctx, domain.DefaultCredentialsID)
	require.NoError(t, err)
	assert.Nil(t, got)

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, creds.Save(ctx, domain.Credentials{
		ID:                domain.DefaultCredentialsID,
		AccountIdentifier: "alice",
		Method:            domain.AuthMethodOAuth,
		OAuth: &domain.OAuthCredentials{
			AccessToken: "gho_abc", RefreshToken: "ghr_def", TokenType: "bearer", Expiry: expiry,
		},
		CreatedAt: created,
		UpdatedAt: created,
	}))

	got, err = creds.Get(ctx, domain.DefaultCredentialsID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.AccountIdentifier)
	assert.Equal(t, domain.AuthMethodOAuth, got.Method)
	require.NotNil(t, got.OAuth)
	assert.Equal(t, "ghr_def", got.OAuth.RefreshToken)
	assert.True(t, expiry.Equal(got.OAuth.Expiry))
	assert.Nil(t, got.PAT)

	require.NoError(t, creds.Save(ctx, domain.Credentials{
		ID:        domain.DefaultCredentialsID,
		Method:    domain.AuthMethodPAT,
		PAT:       &domain.PATCredentials{Token: "ghp_x"},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}))
	got, err = creds.Get(ctx, domain.DefaultCredentialsID)
	require.NoError(t, err)
	assert.Nil(t, got.OAuth)
	assert.Equal(t, "ghp_x", got.AccessToken())

	require.NoError(t, creds.Delete(ctx, domain.DefaultCredentialsID))
	got, err = creds.Get(ctx, domain.DefaultCredentialsID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, creds.Save(ctx, domain.Credentials{}), domain.ErrInvalidInput)
}

func TestCredentialsStore_KeepsCreatedAt(t *testing.T) {
	store := setupTestStore(t)
	creds := store.CredentialsStore()
	ctx := context.Background()
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	save := func(at time.Time, token string) {
		require.NoError(t, creds.Save(ctx, domain.Credentials{
			ID:        domain.DefaultCredentialsID,
			Method:    domain.AuthMethodPAT,
			PAT:       &domain.PATCredentials{Token: token},
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}
	save(first, "ghp_one")
	save(first.Add(48*time.Hour), "ghp_two")

	got, err := creds.Get(ctx, domain.DefaultCredentialsID)
	require.NoError(t, err)
	assert.True(t, first.Equal(got.CreatedAt))
	assert.True(t, first.Add(48*time.Hour).Equal(got.UpdatedAt))
	assert.Equal(t, "ghp_two", got.AccessToken())
}
