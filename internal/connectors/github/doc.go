// Package github talks to the GitHub REST API on behalf of Folio.
//
// It provides two driven adapters:
//
//   - Client implements [driven.PullRequestHost]: listing, inspecting,
//     opening, merging and closing pull requests against the configured
//     repository. Opening a pull request creates the branch and commits the
//     edited content file on it through the contents API.
//
//   - OAuth implements [driven.OAuthProvider]: the authorization-code flow
//     with PKCE, the device-code flow, and token verification.
//
// # Authentication
//
// The Client never reads credentials itself. It asks a [driven.TokenProvider]
// for a bearer token on first use and again after any 401, so personal
// access tokens and OAuth tokens are handled alike.
//
// # Errors
//
// API failures are returned as *APIError or *RateLimitError. Both unwrap to
// the domain errors callers branch on: domain.ErrAuthInvalid for 401,
// domain.ErrNotFound for 404, domain.ErrRateLimited when throttled, and a
// *domain.RemoteError carrying GitHub's message for every other rejection.
// Transport failures wrap domain.ErrRemoteUnavailable.
//
// # Rate limiting
//
// Requests pass through a token bucket (about 1.2 requests per second) and
// pause when the X-RateLimit-Remaining header drops below a reserve.
package github
