package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

type storedJob struct {
	job       domain.ExportJob
	expiresAt time.Time
}

// JobStore keeps export jobs in memory with a TTL.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]storedJob
	now  func() time.Time
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]storedJob),
		now:  time.Now,
	}
}

// Get returns a copy of the job, or nil when missing or expired.
func (s *JobStore) Get(_ context.Context, id string) (*domain.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.jobs[id]
	if !ok || !s.now().Before(stored.expiresAt) {
		return nil, nil
	}
	job := copyJob(stored.job)
	return &job, nil
}

// Save stores a copy of the job with expiry now+ttl.
func (s *JobStore) Save(_ context.Context, job *domain.ExportJob, ttl time.Duration) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = storedJob{job: copyJob(*job), expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes the job. Deleting a missing job is not an error.
func (s *JobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

// ListActive returns unexpired started jobs, oldest first.
func (s *JobStore) ListActive(_ context.Context) ([]domain.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var jobs []domain.ExportJob
	for _, stored := range s.jobs {
		if stored.job.Status == domain.JobStarted && now.Before(stored.expiresAt) {
			jobs = append(jobs, copyJob(stored.job))
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
	return jobs, nil
}

func copyJob(job domain.ExportJob) domain.ExportJob {
	job.Types = append([]domain.TypeCount(nil), job.Types...)
	return job
}
