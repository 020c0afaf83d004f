package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// hourlyQuota is the authenticated REST allowance.
	hourlyQuota = 5000

	// SteadyRate spreads requests to about 4300 an hour.
	SteadyRate rate.Limit = 1.2

	// reserve is how many requests are left unused before pausing until the
	// quota resets.
	reserve = 100
)

// Quota is the request budget GitHub last reported.
type Quota struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter paces requests with a token bucket and pauses when the reported
// quota runs low.
type RateLimiter struct {
	bucket *rate.Limiter

	mu    sync.Mutex
	quota Quota
}

// NewRateLimiter allows perSecond requests. rate.Inf disables pacing.
func NewRateLimiter(perSecond rate.Limit) *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(perSecond, 1),
		quota:  Quota{Limit: hourlyQuota, Remaining: hourlyQuota},
	}
}

// Wait blocks until the next request may go out.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}
	q := r.Quota()
	pause := time.Until(q.ResetAt)
	if q.Remaining >= reserve || pause <= 0 {
		return nil
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota go-github parsed from a response. Responses
// without rate headers are ignored.
func (r *RateLimiter) Observe(rt gh.Rate) {
	if rt.Limit == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quota = Quota{Limit: rt.Limit, Remaining: rt.Remaining, ResetAt: rt.Reset.Time}
}

func (r *RateLimiter) Quota() Quota {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota
}
