package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	mu    sync.Mutex
	token string
	err   error
	calls int
}

func (p *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.token, p.err
}

func (p *mockTokenProvider) AuthMethod(_ context.Context) domain.AuthMethod {
	return domain.AuthMethodPAT
}

func (p *mockTokenProvider) IsAuthenticated(_ context.Context) bool {
	return p.token != ""
}

var _ driven.TokenProvider = (*mockTokenProvider)(nil)

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *mockTokenProvider) {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tokens := &mockTokenProvider{token: "ghp_test"}
	client := NewClient(tokens, Config{Owner: "acme", Repo: "site", BaseURL: server.URL, Timeout: 5 * time.Second}).
		WithRateLimiter(NewRateLimiter(rate.Inf))
	return client, tokens
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func prJSON(number int, author, title string) map[string]any {
	return map[string]any{
		"number":     number,
		"title":      title,
		"state":      "open",
		"user":       map[string]any{"login": author},
		"head":       map[string]any{"ref": "folio/" + author + "/edit"},
		"base":       map[string]any{"ref": "main"},
		"html_url":   "https://github.com/acme/site/pull/1",
		"created_at": "2024-06-01T12:00:00Z",
		"updated_at": "2024-06-02T12:00:00Z",
	}
}

func TestClient_ListPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("GET /repos/acme/site/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		if r.URL.Query().Get("page") == "2" {
			writeJSON(w, http.StatusOK, []any{prJSON(3, "Alice", "Third")})
			return
		}
		w.Header().Set("Link", `<`+server.URL+`/repos/acme/site/pulls?state=open&page=2>; rel="next"`)
		writeJSON(w, http.StatusOK, []any{prJSON(1, "alice", "First"), prJSON(2, "bob", "Second")})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(&mockTokenProvider{token: "ghp_test"}, Config{Owner: "acme", Repo: "site", BaseURL: server.URL}).
		WithRateLimiter(NewRateLimiter(rate.Inf))

	t.Run("all pages", func(t *testing.T) {
		prs, err := client.ListPullRequests(context.Background(), domain.PRListOptions{})
		require.NoError(t, err)
		require.Len(t, prs, 3)
		assert.Equal(t, 1, prs[0].Number)
		assert.Equal(t, "alice", prs[0].Author)
		assert.Equal(t, "main", prs[0].BaseRef)
		assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), prs[0].CreatedAt.UTC())
	})

	t.Run("author filter ignores case", func(t *testing.T) {
		prs, err := client.ListPullRequests(context.Background(), domain.PRListOptions{Author: "alice"})
		require.NoError(t, err)
		require.Len(t, prs, 2)
		assert.Equal(t, []int{1, 3}, []int{prs[0].Number, prs[1].Number})
	})
}

func TestClient_GetPullRequest_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/site/pulls/9", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.GetPullRequest(context.Background(), 9)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestClient_GetPullRequestFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/site/pulls/4/files", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []any{
			map[string]any{"filename": "posts/2024-01-01-a.md", "status": "modified", "additions": 2, "deletions": 1, "patch": "@@"},
		})
	})
	client, _ := newTestClient(t, mux)

	files, err := client.GetPullRequestFiles(context.Background(), 4)

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, domain.PRFile{Filename: "posts/2024-01-01-a.md", Status: "modified", Additions: 2, Deletions: 1, Patch: "@@"}, files[0])
}

func TestClient_MergePullRequest(t *testing.T) {
	t.Run("merged", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /repos/acme/site/pulls/5/merge", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"sha": "abc1234def", "merged": true, "message": "Pull Request successfully merged"})
		})
		client, _ := newTestClient(t, mux)

		res, err := client.MergePullRequest(context.Background(), 5, "")
		require.NoError(t, err)
		assert.True(t, res.Merged)
		assert.Equal(t, "abc1234def", res.SHA)
	})

	t.Run("conflict surfaces remote message", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /repos/acme/site/pulls/5/merge", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "Pull Request is not mergeable"})
		})
		client, _ := newTestClient(t, mux)

		_, err := client.MergePullRequest(context.Background(), 5, "")

		var remoteErr *domain.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, http.StatusMethodNotAllowed, remoteErr.StatusCode)
		assert.Equal(t, "Pull Request is not mergeable", remoteErr.Message)
		assert.Equal(t, "Pull Request is not mergeable", domain.UserMessage(err))
	})
}

func TestClient_ClosePullRequest(t *testing.T) {
	mux := http.NewServeMux()
	var body map[string]any
	mux.HandleFunc("PATCH /repos/acme/site/pulls/6", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, prJSON(6, "alice", "Closed"))
	})
	client, _ := newTestClient(t, mux)

	require.NoError(t, client.ClosePullRequest(context.Background(), 6))
	assert.Equal(t, "closed", body["state"])
}

func TestClient_CreatePullRequest(t *testing.T) {
	mux := http.NewServeMux()
	var (
		refBody  map[string]any
		fileBody map[string]any
		prBody   map[string]any
	)
	mux.HandleFunc("GET /repos/acme/site/git/ref/heads/main", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ref": "refs/heads/main", "object": map[string]any{"sha": "base123"}})
	})
	mux.HandleFunc("POST /repos/acme/site/git/refs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&refBody)
		writeJSON(w, http.StatusCreated, map[string]any{"ref": refBody["ref"], "object": map[string]any{"sha": "base123"}})
	})
	mux.HandleFunc("GET /repos/acme/site/contents/posts/2024-01-01-hello.md", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		writeJSON(w, http.StatusOK, map[string]any{"type": "file", "sha": "blob456", "path": "posts/2024-01-01-hello.md"})
	})
	mux.HandleFunc("PUT /repos/acme/site/contents/posts/2024-01-01-hello.md", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&fileBody)
		writeJSON(w, http.StatusOK, map[string]any{"content": map[string]any{"sha": "blob789"}})
	})
	mux.HandleFunc("POST /repos/acme/site/pulls", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&prBody)
		writeJSON(w, http.StatusCreated, prJSON(12, "alice", "Edit: Hello"))
	})
	client, _ := newTestClient(t, mux)

	pr, err := client.CreatePullRequest(context.Background(), domain.NewPullRequest{
		Title:   "Edit: Hello",
		Body:    "Proposed by alice",
		Branch:  "folio/alice/hello-1",
		Base:    "main",
		Path:    "posts/2024-01-01-hello.md",
		Content: "---\ntitle: Hello\n---\n",
		Message: "Update hello",
	})

	require.NoError(t, err)
	assert.Equal(t, 12, pr.Number)
	assert.Equal(t, "refs/heads/folio/alice/hello-1", refBody["ref"])
	assert.Equal(t, "base123", refBody["sha"])
	assert.Equal(t, "blob456", fileBody["sha"])
	assert.Equal(t, "folio/alice/hello-1", fileBody["branch"])
	assert.Equal(t, "Update hello", fileBody["message"])
	assert.Equal(t, "folio/alice/hello-1", prBody["head"])
	assert.Equal(t, "main", prBody["base"])
}

func TestClient_UnauthorizedRefetchesToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Bad credentials"})
	})
	client, tokens := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.CurrentUser(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.Equal(t, domain.CategoryAuth, domain.Categorize(err))

	_, _ = client.CurrentUser(ctx)
	assert.Equal(t, 2, tokens.calls)
}

func TestClient_MissingToken(t *testing.T) {
	client := NewClient(&mockTokenProvider{err: domain.ErrAuthRequired}, Config{Owner: "acme", Repo: "site"})

	_, err := client.ListPullRequests(context.Background(), domain.PRListOptions{})

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := NewClient(&mockTokenProvider{token: "t"}, Config{Owner: "acme", Repo: "site", BaseURL: base}).
		WithRateLimiter(NewRateLimiter(rate.Inf))

	_, err := client.CurrentUser(context.Background())

	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, domain.CategoryNetwork, domain.Categorize(err))
}

func TestClient_RateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "API rate limit exceeded"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CurrentUser(context.Background())

	assert.True(t, IsRateLimited(err))
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 0, client.RateLimiter().Quota().Remaining)
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusUnauthorized, domain.ErrAuthInvalid},
		{http.StatusNotFound, domain.ErrNotFound},
	}
	for _, tt := range tests {
		err := error(&APIError{StatusCode: tt.status, Message: "x"})
		assert.ErrorIs(t, err, tt.target)
	}

	var remoteErr *domain.RemoteError
	require.True(t, errors.As(&APIError{StatusCode: 422, Message: "Validation Failed"}, &remoteErr))
	assert.Equal(t, "Validation Failed", remoteErr.Message)
	assert.True(t, IsForbidden(&APIError{StatusCode: 403}))
}

func TestRateLimiter_Observe(t *testing.T) {
	r := NewRateLimiter(rate.Inf)
	reset := time.Unix(1700000000, 0)

	r.Observe(gh.Rate{})
	assert.Equal(t, 5000, r.Quota().Remaining, "no headers")

	r.Observe(gh.Rate{Limit: 5000, Remaining: 4321, Reset: gh.Timestamp{Time: reset}})

	assert.Equal(t, Quota{Limit: 5000, Remaining: 4321, ResetAt: reset}, r.Quota())
	assert.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_PausesBelowReserve(t *testing.T) {
	r := NewRateLimiter(rate.Inf)
	r.Observe(gh.Rate{Limit: 5000, Remaining: 1, Reset: gh.Timestamp{Time: time.Now().Add(time.Hour)}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimitError_RetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err := &RateLimitError{ResetAt: now.Add(90 * time.Second)}

	assert.Equal(t, 90*time.Second, err.RetryAfter(now))
	assert.Zero(t, err.RetryAfter(now.Add(time.Hour)))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, (&APIError{StatusCode: 422, Message: "bad"}).Error(), "422 bad")
}
