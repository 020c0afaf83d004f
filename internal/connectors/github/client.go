package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

var log = logger.Named("github")

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client for one repository.
type Client struct {
	cfg           Config
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter

	mu sync.Mutex
	gh *gh.Client
}

// NewClient creates a GitHub API client. The token is fetched lazily.
func NewClient(tokenProvider driven.TokenProvider, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:           cfg,
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(SteadyRate),
	}
}

// WithRateLimiter replaces the limiter. Used by tests to disable throttling.
func (c *Client) WithRateLimiter(r *RateLimiter) *Client {
	c.rateLimiter = r
	return c
}

// ensureClient initializes the go-github client if not already done.
func (c *Client) ensureClient(ctx context.Context) (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gh != nil {
		return c.gh, nil
	}
	if c.tokenProvider == nil {
		return nil, domain.ErrAuthRequired
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	client, err := newGitHubClient(ctx, token, c.cfg)
	if err != nil {
		return nil, err
	}
	c.gh = client
	return client, nil
}

// resetClient drops the cached client so the next call fetches a new token.
func (c *Client) resetClient() {
	c.mu.Lock()
	c.gh = nil
	c.mu.Unlock()
}

// newGitHubClient builds a go-github client authenticating with token.
func newGitHubClient(ctx context.Context, token string, cfg Config) (*gh.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = cfg.Timeout
	client := gh.NewClient(tc)

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse API base URL: %w", err)
		}
		client.BaseURL = u
	}
	return client, nil
}

// call runs one API request with rate limiting and error mapping.
func (c *Client) call(ctx context.Context, operation string, fn func(*gh.Client) (*gh.Response, error)) error {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := fn(client)
	if resp != nil {
		c.rateLimiter.Observe(resp.Rate)
	}
	if err == nil {
		return nil
	}

	wrapped := c.wrapError(err, operation)
	if IsUnauthorized(wrapped) {
		c.resetClient()
	}
	return wrapped
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var rateLimitErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateLimitErr) || errors.As(err, &abuseErr) {
		q := c.rateLimiter.Quota()
		rlErr := &RateLimitError{ResetAt: q.ResetAt, Remaining: q.Remaining, Limit: q.Limit}
		log.Warn("%s: rate limited, retry in %s", operation, rlErr.RetryAfter(time.Now()).Round(time.Second))
		return rlErr
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    errorMessage(ghErr),
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w: %v", operation, domain.ErrRemoteUnavailable, err)
}

// errorMessage joins GitHub's message with any field-level details.
func errorMessage(e *gh.ErrorResponse) string {
	parts := []string{e.Message}
	for _, detail := range e.Errors {
		if detail.Message != "" {
			parts = append(parts, detail.Message)
		}
	}
	return strings.Join(parts, ": ")
}
