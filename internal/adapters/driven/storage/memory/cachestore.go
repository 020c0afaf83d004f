package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is a process-local TTL cache. Values are copied on the way in
// and out so callers never share backing arrays.
type CacheStore struct {
	mu    sync.RWMutex
	items map[string]domain.CacheItem
	now   func() time.Time
}

// NewCacheStore creates an empty cache.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		items: make(map[string]domain.CacheItem),
		now:   time.Now,
	}
}

// Get returns the value, or false when missing or expired.
func (s *CacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if item.Expired(s.now()) {
		s.mu.Lock()
		if cur, ok := s.items[key]; ok && cur.Expired(s.now()) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), item.Value...), true, nil
}

// Set stores value under key. A zero ttl never expires.
func (s *CacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := domain.CacheItem{Key: key, Value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.ExpiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = item
	s.mu.Unlock()
	return nil
}

// Delete removes a key and reports how many entries were removed.
func (s *CacheStore) Delete(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return 0, nil
	}
	delete(s.items, key)
	return 1, nil
}

// DeletePrefix removes every key starting with prefix.
func (s *CacheStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *CacheStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
