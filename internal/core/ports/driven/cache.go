package driven

import (
	"context"
	"time"
)

// CacheStore is a TTL key/value store. Writes are atomic per key; readers
// never observe partial values. Concurrent writers of the same key need no
// coordination: the last write wins.
type CacheStore interface {
	// Get returns the value and true, or false when missing or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key and reports how many entries were removed.
	Delete(ctx context.Context, key string) (int, error)

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
