package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/connectors/filesystem"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/renderers/markdown"
)

// newFileServer serves a content root holding one published and one draft
// post through the real content service.
func newFileServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "posts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	files := map[string]string{
		"live.md":   "---\ntitle: \"Live\"\nslug: live\ndate: \"2024-01-02\"\n---\nOut.\n",
		"secret.md": "---\ntitle: \"Secret\"\nslug: secret\nstatus: draft\ndate: \"2024-01-03\"\n---\nNot yet.\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	repo, err := filesystem.NewRepository(root)
	require.NoError(t, err)
	registry := services.NewLoaderRegistry(services.LoaderDeps{
		Repo:            repo,
		Renderer:        markdown.New(),
		Cache:           services.NewContentCache(memory.NewCacheStore(), repo, time.Hour),
		DefaultAuthorID: 1,
	})
	content := services.NewContentService(
		registry,
		services.NewInterceptor(registry, domain.DefaultPostType),
		memory.NewPostStore(),
		domain.DefaultPostType,
	)
	return newTestServer(t, Ports{Content: content}, Config{})
}

func TestPublicRoutes_HideDraftFiles(t *testing.T) {
	s := newFileServer(t)

	t.Run("listing", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/posts?type=posts&per_page=-1")
		require.Equal(t, http.StatusOK, rec.Code)
		var list domain.PostList
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list.Posts, 1)
		assert.Equal(t, "live", list.Posts[0].Slug)
		assert.Equal(t, "1", rec.Header().Get(headerTotal))
	})

	t.Run("listing asks for drafts", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/posts?type=posts&status=draft")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Secret")
	})

	t.Run("single draft", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/posts/posts/secret")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotContains(t, rec.Body.String(), "Not yet")
	})

	t.Run("single published", func(t *testing.T) {
		rec := do(s, http.MethodGet, "/posts/posts/live")
		require.Equal(t, http.StatusOK, rec.Code)
		var post domain.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
		assert.Equal(t, "Live", post.Title)
	})
}
