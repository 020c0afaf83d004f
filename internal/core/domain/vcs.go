package domain

import "time"

// Commit is a read-only projection of one Git commit.
type Commit struct {
	Hash      string    `json:"hash"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp int64     `json:"timestamp"`
	Message   string    `json:"message"`
	Date      time.Time `json:"date"`
	// Files and Diff are populated by commit detail lookups only.
	Files []string `json:"files,omitempty"`
	Diff  string   `json:"diff,omitempty"`
}

// ShortHash returns the first seven characters of the hash.
func (c *Commit) ShortHash() string {
	if len(c.Hash) <= 7 {
		return c.Hash
	}
	return c.Hash[:7]
}

// VCSStatus describes version control availability for the content root.
type VCSStatus struct {
	ToolAvailable   bool   `json:"tool_available"`
	RepoInitialized bool   `json:"repo_initialized"`
	RootPath        string `json:"root_path"`
	Branch          string `json:"branch,omitempty"`
	RemoteURL       string `json:"remote_url,omitempty"`
}

// RemoteCounts is the divergence between local and remote branches.
type RemoteCounts struct {
	Incoming int
	Outgoing int
}
