package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

// Ensure cacheStore implements the interface.
var _ driven.CacheStore = (*cacheStore)(nil)

// Get returns the value for key. Expired rows are removed on read.
func (s *cacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if expiresAt != 0 && s.store.now().UnixNano() >= expiresAt {
		if _, err := s.store.db.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE key = ? AND expires_at = ?", key, expiresAt); err != nil {
			return nil, false, fmt.Errorf("expiring cache entry: %w", err)
		}
		return nil, false, nil
	}
	return value, true, nil
}

// Set upserts the value. Each write is a single statement, so readers see
// either the old or the new value.
func (s *cacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.store.now().Add(ttl).UnixNano()
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes a single key.
func (s *cacheStore) Delete(ctx context.Context, key string) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil {
		return 0, fmt.Errorf("deleting cache entry: %w", err)
	}
	return affected(res)
}

// DeletePrefix removes every key beginning with prefix. The comparison uses
// substr rather than LIKE so '%' and '_' in keys match literally.
func (s *cacheStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		res, err := s.store.db.ExecContext(ctx, "DELETE FROM cache_entries")
		if err != nil {
			return 0, fmt.Errorf("clearing cache entries: %w", err)
		}
		return affected(res)
	}
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE substr(key, 1, ?) = ?",
		utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return 0, fmt.Errorf("deleting cache prefix: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return int(n), nil
}
