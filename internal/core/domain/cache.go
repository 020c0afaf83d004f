package domain

import "time"

// CacheNamespace prefixes every key Folio writes to the cache store.
const CacheNamespace = "folio:"

// Cache key families under CacheNamespace.
const (
	CacheArchivePrefix     = CacheNamespace + "archive:"
	CachePostPrefix        = CacheNamespace + "post:"
	CacheSubmissionsPrefix = CacheNamespace + "submissions:"
)

// CacheEntry is a cached listing: one page of virtual posts plus totals.
type CacheEntry struct {
	Posts      []VirtualPost `json:"posts"`
	FoundCount int           `json:"found_count"`
	PageCount  int           `json:"page_count"`
	// Submissions is set instead of Posts for submission listings.
	Submissions []PullRequest `json:"submissions,omitempty"`
}

// CacheItem is a raw stored value with its expiry, as seen by stores.
type CacheItem struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Expired reports whether the item is past its expiry at now.
// A zero ExpiresAt never expires.
func (c CacheItem) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
