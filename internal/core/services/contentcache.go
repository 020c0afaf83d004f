package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// ContentCache stores rendered listings keyed by content type, directory
// freshness and query shape. Any file edit, addition or removal moves the
// freshness signal, so stale entries are never read again and age out by TTL.
type ContentCache struct {
	store driven.CacheStore
	repo  driven.ContentRepository
	ttl   time.Duration
}

// NewContentCache creates a content cache over store.
func NewContentCache(store driven.CacheStore, repo driven.ContentRepository, ttl time.Duration) *ContentCache {
	return &ContentCache{store: store, repo: repo, ttl: ttl}
}

// Get returns the cached entry for key. Store and decode failures are
// treated as misses.
func (c *ContentCache) Get(ctx context.Context, key string) (*domain.CacheEntry, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache get %s: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		logger.Warn("cache decode %s: %v", key, err)
		return nil, false
	}
	return &entry, true
}

// Set stores entry under key with the configured TTL.
func (c *ContentCache) Set(ctx context.Context, key string, entry *domain.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes one key.
func (c *ContentCache) Delete(ctx context.Context, key string) (int, error) {
	return c.store.Delete(ctx, key)
}

// DeletePrefix removes every key under prefix.
func (c *ContentCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	return c.store.DeletePrefix(ctx, prefix)
}

// ClearAll removes every key in the Folio namespace and nothing else.
func (c *ContentCache) ClearAll(ctx context.Context) (int, error) {
	n, err := c.store.DeletePrefix(ctx, domain.CacheNamespace)
	if err != nil {
		return n, fmt.Errorf("clear cache: %w", err)
	}
	logger.Info("cleared %d cache entries", n)
	return n, nil
}

// BuildContentKey returns the listing key for q. Freshness is recomputed on
// every call.
func (c *ContentCache) BuildContentKey(ctx context.Context, postType string, q domain.Query) string {
	return fmt.Sprintf("%s%s:%s:%s", domain.CacheArchivePrefix, postType, c.freshness(ctx, postType), paramsHash(q))
}

// BuildPostKey returns the single-post key for slug.
func (c *ContentCache) BuildPostKey(ctx context.Context, postType, slug string) string {
	return fmt.Sprintf("%s%s:%s:%s", domain.CachePostPrefix, postType, slug, c.freshness(ctx, postType))
}

// BuildSubmissionsKey returns the submissions listing key for login.
// Logins compare case-insensitively.
func BuildSubmissionsKey(login string) string {
	return domain.CacheSubmissionsPrefix + strings.ToLower(login)
}

// ArchivePrefix covers every listing key of postType.
func ArchivePrefix(postType string) string {
	return domain.CacheArchivePrefix + postType + ":"
}

// PostPrefix covers every single-post key of postType and slug.
func PostPrefix(postType, slug string) string {
	return domain.CachePostPrefix + postType + ":" + slug + ":"
}

func (c *ContentCache) freshness(ctx context.Context, postType string) string {
	f, err := c.repo.Freshness(ctx, postType)
	if err != nil {
		logger.Debug("freshness %s: %v", postType, err)
		return "0"
	}
	return f
}

// paramsHash hashes the non-default query parameters, escaped and sorted.
func paramsHash(q domain.Query) string {
	v := url.Values{}
	for _, kv := range q.Params() {
		v.Set(kv[0], kv[1])
	}
	sum := sha256.Sum256([]byte(v.Encode()))
	return hex.EncodeToString(sum[:])[:16]
}
