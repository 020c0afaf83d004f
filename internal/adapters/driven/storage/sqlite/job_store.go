package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// jobStore implements driven.JobStore. Every Get decodes a fresh copy.
type jobStore struct {
	store *Store
}

// Ensure jobStore implements the interface.
var _ driven.JobStore = (*jobStore)(nil)

// Get returns nil and no error when the job is missing or expired.
func (s *jobStore) Get(ctx context.Context, id string) (*domain.ExportJob, error) {
	var data string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT data FROM export_jobs WHERE id = ? AND expires_at > ?",
		id, s.store.now().UnixNano(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading export job: %w", err)
	}
	return decodeJob(data)
}

// Save writes the job with expiry now+ttl.
func (s *jobStore) Save(ctx context.Context, job *domain.ExportJob, ttl time.Duration) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshalling export job: %w", err)
	}

	now := s.store.now()
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO export_jobs (id, status, data, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			data = excluded.data,
			expires_at = excluded.expires_at
	`, job.ID, string(job.Status), string(data), unixNanos(job.CreatedAt), now.Add(ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("saving export job: %w", err)
	}
	return nil
}

// Delete removes the job; a missing job is not an error.
func (s *jobStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM export_jobs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting export job: %w", err)
	}
	return nil
}

// ListActive returns unexpired started jobs, oldest first.
func (s *jobStore) ListActive(ctx context.Context) ([]domain.ExportJob, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT data FROM export_jobs
		WHERE status = ? AND expires_at > ?
		ORDER BY created_at, id
	`, string(domain.JobStarted), s.store.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("querying export jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.ExportJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning export job: %w", err)
		}
		job, err := decodeJob(data)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating export jobs: %w", err)
	}
	return jobs, nil
}

func decodeJob(data string) (*domain.ExportJob, error) {
	var job domain.ExportJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("unmarshalling export job: %w", err)
	}
	return &job, nil
}
