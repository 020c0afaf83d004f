package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCache struct {
	mu      sync.Mutex
	batches [][]string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{}
}

func (c *recordingCache) ClearAll(context.Context) (int, error) {
	return 0, nil
}

func (c *recordingCache) InvalidateForChangedFiles(_ context.Context, paths []string) (int, error) {
	c.mu.Lock()
	c.batches = append(c.batches, append([]string(nil), paths...))
	c.mu.Unlock()
	return len(paths), nil
}

// paths returns the distinct invalidated paths, sorted.
func (c *recordingCache) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, b := range c.batches {
		for _, p := range b {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}

func startWatcher(t *testing.T, root string, cache *recordingCache) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(root, 50*time.Millisecond, cache)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}
}

func waitForPaths(t *testing.T, cache *recordingCache, want ...string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, cache.paths())
	}, 5*time.Second, 20*time.Millisecond, "invalidated paths: %v", cache.paths())
}

func TestWatcher_InvalidatesChangedContent(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "posts/2024-01-01-hello.md", "v1")
	cache := newRecordingCache()
	startWatcher(t, root, cache)

	writeContent(t, root, "posts/2024-01-01-hello.md", "v2")
	writeContent(t, root, "posts/notes.txt", "ignored")
	writeContent(t, root, "posts/.hidden.md", "ignored")

	waitForPaths(t, cache, "posts/2024-01-01-hello.md")
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "posts"), 0755))
	cache := newRecordingCache()
	startWatcher(t, root, cache)

	for i := 0; i < 5; i++ {
		writeContent(t, root, "posts/a.md", "burst")
	}
	writeContent(t, root, "posts/b.md", "b")

	waitForPaths(t, cache, "posts/a.md", "posts/b.md")
}

func TestWatcher_PicksUpNewTypeDirectory(t *testing.T) {
	root := t.TempDir()
	cache := newRecordingCache()
	startWatcher(t, root, cache)

	require.NoError(t, os.Mkdir(filepath.Join(root, "events"), 0755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)
	writeContent(t, root, "events/launch.md", "x")

	waitForPaths(t, cache, "events/launch.md")
}

func TestWatcher_RemovalIsAChange(t *testing.T) {
	root := t.TempDir()
	path := writeContent(t, root, "pages/about.md", "x")
	cache := newRecordingCache()
	startWatcher(t, root, cache)

	require.NoError(t, os.Remove(path))

	waitForPaths(t, cache, "pages/about.md")
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, newRecordingCache())

	err := w.Run(context.Background())

	assert.Error(t, err)
}
