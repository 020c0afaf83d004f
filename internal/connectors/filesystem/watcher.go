package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

var log = logger.Named("watcher")

// Watcher watches the content root and each type directory and hands batches
// of changed content files to the cache invalidator.
type Watcher struct {
	root     string
	debounce time.Duration
	cache    driving.CacheService
	ready    chan struct{}
}

// NewWatcher creates a watcher for root. A zero debounce uses DefaultDebounce.
func NewWatcher(root string, debounce time.Duration, cache driving.CacheService) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		cache:    cache,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the initial watches are in place.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. Paths handed to the invalidator are
// relative to the root, e.g. "posts/2024-01-01-hello.md".
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addAll(fsw); err != nil {
		return err
	}
	close(w.ready)
	log.Info("watching %s", w.root)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if rel, ok := w.handle(fsw, event); ok {
				pending[rel] = struct{}{}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("%v", err)

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]struct{})
		}
	}
}

func (w *Watcher) addAll(fsw *fsnotify.Watcher) error {
	if err := fsw.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("read content root: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			dir := filepath.Join(w.root, e.Name())
			if err := fsw.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
	}
	return nil
}

// handle classifies an event. It starts watching new type directories and
// returns the relative path of changed content files.
func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return "", false
	}
	dir, name := filepath.Split(rel)
	dir = filepath.Clean(dir)

	// A new directory directly under the root is a new content type.
	if dir == "." {
		if event.Has(fsnotify.Create) && !isHidden(name) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := fsw.Add(event.Name); err != nil {
					log.Warn("watch %s: %v", event.Name, err)
				} else {
					log.Debug("watching new type %s", name)
				}
			}
		}
		return "", false
	}

	// Only files directly inside a type directory are content.
	if filepath.Dir(dir) != "." || isHidden(dir) || !IsContentFile(name) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	n, err := w.cache.InvalidateForChangedFiles(ctx, paths)
	if err != nil {
		log.Warn("invalidate %d files: %v", len(paths), err)
		return
	}
	log.Debug("%d files changed, %d cache entries cleared", len(paths), n)
}
