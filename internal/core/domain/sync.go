package domain

import (
	"strings"
	"time"
)

// OperationResult is the structured outcome of a user-facing operation.
// API-facing calls return it instead of failing.
type OperationResult struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Category ErrorCategory `json:"category,omitempty"`
	// Changes is the number of files a pull brought in.
	Changes int `json:"changes,omitempty"`
	// Files lists paths touched by the operation.
	Files []string `json:"files,omitempty"`
	// Cleared is the number of cache entries invalidated as a side effect.
	Cleared int `json:"cleared,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded(message string) OperationResult {
	return OperationResult{Success: true, Message: message}
}

// Failed builds a failed result, categorising err.
func Failed(err error) OperationResult {
	return OperationResult{
		Success:  false,
		Message:  UserMessage(err),
		Category: Categorize(err),
	}
}

// SyncStatus summarises the content root's relation to its remote.
type SyncStatus struct {
	Configured    bool      `json:"configured"`
	Connected     bool      `json:"connected"`
	IncomingCount int       `json:"incoming_count"`
	OutgoingCount int       `json:"outgoing_count"`
	LastSyncTime  time.Time `json:"last_sync_time"`
	RemoteURL     string    `json:"remote_url,omitempty"`
	Branch        string    `json:"branch,omitempty"`
}

// PushEvent is an inbound repository push notification.
type PushEvent struct {
	// Ref is the full ref name, e.g. refs/heads/main.
	Ref    string `json:"ref"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// Branch returns the branch name of Ref.
func (e PushEvent) Branch() string {
	return strings.TrimPrefix(e.Ref, "refs/heads/")
}
