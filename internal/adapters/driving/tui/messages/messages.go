// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewPosts lists posts of a content type.
	ViewPosts
	// ViewExport shows the progress of an export job.
	ViewExport
	// ViewHistory lists content commits.
	ViewHistory
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewPosts:
		return "posts"
	case ViewExport:
		return "export"
	case ViewHistory:
		return "history"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// TypesLoaded carries the known content types.
type TypesLoaded struct {
	Types []string
	Err   error
}

// PostsLoaded carries one page of posts.
type PostsLoaded struct {
	Query domain.Query
	List  *domain.PostList
	Err   error
}

// PostLoaded carries a single post for the detail pane.
type PostLoaded struct {
	Post *domain.Post
	Err  error
}

// ProgressTick asks the export view to poll job status.
type ProgressTick struct {
	JobID string
}

// ProgressUpdated carries a polled job status.
type ProgressUpdated struct {
	Progress domain.JobProgress
}

// JobCancelled reports the outcome of a cancel request.
type JobCancelled struct {
	JobID string
	Err   error
}

// HistoryLoaded carries recent commits.
type HistoryLoaded struct {
	Commits []domain.Commit
	Err     error
}

// CommitLoaded carries one commit with its files.
type CommitLoaded struct {
	Commit *domain.Commit
	Err    error
}
