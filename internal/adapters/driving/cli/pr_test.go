package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func samplePullRequests() []domain.PullRequest {
	mergeable := true
	return []domain.PullRequest{
		{
			Number: 12, Title: "Fix typo in hello", Author: "octocat", State: "open",
			HeadRef: "folio/octocat/hello-1700000000", BaseRef: "main",
			Additions: 1, Deletions: 1, ChangedFiles: 1, Mergeable: &mergeable,
			Body: "Spelling.", UpdatedAt: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{Number: 13, Title: "New post", Author: "hubot", State: "open"},
	}
}

func TestParsePRNumber(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			n, err := parsePRNumber(tt.arg)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestPRList(t *testing.T) {
	t.Run("defaults to open", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.pullRequest.prs = samplePullRequests()

		out, err := execute(t, "pr", "list")

		require.NoError(t, err)
		assert.Equal(t, domain.PRListOptions{State: "open"}, ts.pullRequest.opts)
		assert.Contains(t, out, "Fix typo in hello")
		assert.Contains(t, out, "hubot")
		assert.Contains(t, out, "2024-03-04")
	})

	t.Run("filters", func(t *testing.T) {
		ts := setupTestServices(t)

		out, err := execute(t, "pr", "list", "--state", "all", "--author", "octocat")

		require.NoError(t, err)
		assert.Equal(t, domain.PRListOptions{State: "all", Author: "octocat"}, ts.pullRequest.opts)
		assert.Contains(t, out, "No pull requests.")
	})

	t.Run("error", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.pullRequest.listErr = domain.ErrAuthRequired

		_, err := execute(t, "pr", "list")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "list pull requests")
	})
}

func TestPRShow(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.pullRequest.prs = samplePullRequests()

		out, err := execute(t, "pr", "show", "12")

		require.NoError(t, err)
		assert.Contains(t, out, "#12 Fix typo in hello")
		assert.Contains(t, out, "folio/octocat/hello-1700000000 -> main")
		assert.Contains(t, out, "+1 -1 in 1 files")
		assert.Contains(t, out, "Mergeable: true")
		assert.Contains(t, out, "Spelling.")
	})

	t.Run("mergeability unknown", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.pullRequest.prs = samplePullRequests()

		out, err := execute(t, "pr", "show", "13")

		require.NoError(t, err)
		assert.Contains(t, out, "Mergeable: unknown")
	})

	t.Run("invalid number", func(t *testing.T) {
		setupTestServices(t)

		_, err := execute(t, "pr", "show", "twelve")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPRFiles(t *testing.T) {
	ts := setupTestServices(t)
	ts.pullRequest.files = []domain.PRFile{
		{Filename: "posts/hello.md", Status: "modified", Additions: 1, Deletions: 1, Patch: "@@ -1 +1 @@\n-helo\n+hello"},
	}

	out, err := execute(t, "pr", "files", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "modified")
	assert.Contains(t, out, "posts/hello.md")
	assert.NotContains(t, out, "+hello")

	out, err = execute(t, "pr", "files", "12", "--patch")
	require.NoError(t, err)
	assert.Contains(t, out, "+hello")
}

func TestPRMerge(t *testing.T) {
	t.Run("requires yes", func(t *testing.T) {
		ts := setupTestServices(t)

		_, err := execute(t, "pr", "merge", "12")

		assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
		assert.Empty(t, ts.pullRequest.merged)
	})

	t.Run("merges", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.pullRequest.result = domain.Succeeded("Merged #12")

		out, err := execute(t, "pr", "merge", "12", "--yes")

		require.NoError(t, err)
		assert.Contains(t, out, "Merged #12")
		assert.Equal(t, []int{12}, ts.pullRequest.merged)
	})

	t.Run("failure", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.pullRequest.result = domain.Failed(&domain.RemoteError{StatusCode: 405, Message: "Pull Request is not mergeable"})

		_, err := execute(t, "pr", "merge", "12", "-y")

		require.Error(t, err)
	})
}

func TestPRClose(t *testing.T) {
	t.Run("requires yes", func(t *testing.T) {
		ts := setupTestServices(t)

		_, err := execute(t, "pr", "close", "12")

		assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
		assert.Empty(t, ts.pullRequest.closed)
	})

	t.Run("closes", func(t *testing.T) {
		ts := setupTestServices(t)

		_, err := execute(t, "pr", "close", "12", "--yes")

		require.NoError(t, err)
		assert.Equal(t, []int{12}, ts.pullRequest.closed)
	})
}
