package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// LoaderRegistry owns one PostLoader per content type. Discovery and
// registration are separate steps: discovery only reads the content root,
// registration creates loaders.
type LoaderRegistry struct {
	repo driven.ContentRepository
	deps LoaderDeps

	mu      sync.RWMutex
	loaders map[string]*PostLoader
}

// NewLoaderRegistry creates an empty registry.
func NewLoaderRegistry(deps LoaderDeps) *LoaderRegistry {
	return &LoaderRegistry{
		repo:    deps.Repo,
		deps:    deps,
		loaders: make(map[string]*PostLoader),
	}
}

// DiscoverTypes lists type directories under the content root. It has no
// side effects.
func (r *LoaderRegistry) DiscoverTypes(ctx context.Context) ([]string, error) {
	types, err := r.repo.Types(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover types: %w", err)
	}
	return types, nil
}

// Register creates loaders for types that have none. Calling it again with
// the same types is a no-op.
func (r *LoaderRegistry) Register(types []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		if t == "" {
			continue
		}
		if _, ok := r.loaders[t]; ok {
			continue
		}
		r.loaders[t] = NewPostLoader(t, r.deps)
		logger.Debug("registered loader for %s", t)
	}
}

// Loader returns the loader for postType, creating it on first use so types
// added after startup are still served.
func (r *LoaderRegistry) Loader(postType string) *PostLoader {
	r.mu.RLock()
	l, ok := r.loaders[postType]
	r.mu.RUnlock()
	if ok {
		return l
	}
	r.Register([]string{postType})
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaders[postType]
}

// Registered returns the registered types in sorted order.
func (r *LoaderRegistry) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.loaders))
	for t := range r.loaders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Has reports whether postType has a registered loader.
func (r *LoaderRegistry) Has(postType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaders[postType]
	return ok
}
