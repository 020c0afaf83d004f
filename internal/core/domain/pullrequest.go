package domain

import "time"

// PullRequest is a thin projection of a remote pull request.
type PullRequest struct {
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	Body         string    `json:"body,omitempty"`
	State        string    `json:"state"`
	Author       string    `json:"author"`
	Mergeable    *bool     `json:"mergeable,omitempty"`
	Merged       bool      `json:"merged"`
	HeadRef      string    `json:"head_ref"`
	BaseRef      string    `json:"base_ref"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	ChangedFiles int       `json:"changed_files"`
	HTMLURL      string    `json:"html_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsMergeable reports whether the remote has confirmed the PR can merge.
func (p *PullRequest) IsMergeable() bool {
	return p.Mergeable != nil && *p.Mergeable
}

// PRFile is one file changed by a pull request.
type PRFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

// PRListOptions filters pull request listings.
type PRListOptions struct {
	// State is open, closed or all. Empty means open.
	State  string
	Author string
}

// NewPullRequest describes a PR to open with a single file change.
type NewPullRequest struct {
	Title   string
	Body    string
	Branch  string
	Base    string
	Path    string
	Content string
	Message string
}

// MergeResult is the remote's answer to a merge request.
type MergeResult struct {
	Merged  bool
	SHA     string
	Message string
}

// SubmitRequest is a collaborative edit proposed as a pull request.
type SubmitRequest struct {
	Login   string
	Type    string
	Slug    string
	Title   string
	Body    string
	Message string
}
