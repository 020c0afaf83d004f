package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingRequiredField indicates a content file lacks title or slug.
	ErrMissingRequiredField = errors.New("missing required front matter field")

	// ErrJobNotFound indicates an export job record is missing or expired.
	ErrJobNotFound = errors.New("job not found")

	// ErrConfirmationRequired guards irreversible operations.
	ErrConfirmationRequired = errors.New("confirmation required for destructive operation")

	// ErrDirectoryNotEmpty is returned when a clone target already has files.
	ErrDirectoryNotEmpty = errors.New("directory is not empty")

	// Version control.

	// ErrVCSUnavailable indicates the git executable could not be found.
	ErrVCSUnavailable = errors.New("version control unavailable")

	// ErrRemoteNotConfigured indicates no remote URL is set.
	ErrRemoteNotConfigured = errors.New("remote not configured")

	// Remote service errors.

	// ErrAuthRequired indicates no credential is stored.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the stored credential was rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRemoteUnavailable indicates a network or transport failure.
	ErrRemoteUnavailable = errors.New("remote service unreachable")

	// ErrSignatureInvalid indicates a webhook payload failed HMAC verification.
	ErrSignatureInvalid = errors.New("invalid webhook signature")
)

// RemoteError is an application-level rejection returned by the remote API,
// such as a merge conflict. Message is the remote's own text.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
}

// ErrorCategory classifies failures for user-facing messages.
type ErrorCategory string

// Error categories.
const (
	CategoryNone        ErrorCategory = ""
	CategoryAuth        ErrorCategory = "auth"
	CategoryNetwork     ErrorCategory = "network"
	CategoryApplication ErrorCategory = "application"
	CategoryValidation  ErrorCategory = "validation"
)

// Categorize maps an error onto an ErrorCategory.
func Categorize(err error) ErrorCategory {
	var remoteErr *RemoteError
	switch {
	case err == nil:
		return CategoryNone
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrAuthInvalid):
		return CategoryAuth
	case errors.Is(err, ErrRemoteUnavailable), errors.Is(err, ErrRateLimited):
		return CategoryNetwork
	case errors.As(err, &remoteErr):
		return CategoryApplication
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConfirmationRequired):
		return CategoryValidation
	default:
		return CategoryApplication
	}
}

// UserMessage renders an actionable message for err.
func UserMessage(err error) string {
	switch Categorize(err) {
	case CategoryNone:
		return ""
	case CategoryAuth:
		return "Not authenticated with GitHub. Run 'folio auth login' to connect your account."
	case CategoryNetwork:
		return "Could not reach GitHub. Check your network connection and try again."
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Message
	}
	return err.Error()
}
