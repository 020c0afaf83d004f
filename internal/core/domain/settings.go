package domain

import (
	"os"
	"path/filepath"
	"time"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	Content ContentSettings
	Git     GitSettings
	Remote  RemoteSettings
	OAuth   OAuthSettings
	Export  ExportSettings
	Server  ServerSettings
	// DataDir holds the SQLite database.
	DataDir string
}

// ContentSettings configures the content root and caching.
type ContentSettings struct {
	Root            string
	DefaultType     string
	DefaultAuthorID int64
	CacheTTL        time.Duration
	// Renderer selects goldmark or the built-in markdown renderer.
	Renderer string
	// CacheBackend selects where rendered listings are cached.
	CacheBackend string
}

// GitSettings configures the git executable.
type GitSettings struct {
	Binary      string
	Timeout     time.Duration
	AuthorName  string
	AuthorEmail string
}

// RemoteSettings configures the remote repository and GitHub API.
type RemoteSettings struct {
	URL           string
	Branch        string
	Owner         string
	Repo          string
	APIBaseURL    string
	Timeout       time.Duration
	WebhookSecret string
	PullInterval  time.Duration
}

// Configured reports whether a remote URL is set.
func (r RemoteSettings) Configured() bool {
	return r.URL != ""
}

// OAuthSettings holds the GitHub OAuth application credentials.
type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// ExportSettings configures bulk export.
type ExportSettings struct {
	BatchSize     int
	JobTTL        time.Duration
	OutputDir     string
	BatchInterval time.Duration
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	Addr string
}

// Renderer names.
const (
	RendererGoldmark = "goldmark"
	RendererBuiltin  = "builtin"
)

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendMemory = "memory"
)

// DefaultSettings returns sensible defaults rooted at ~/.folio.
func DefaultSettings() Settings {
	base := ".folio"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".folio")
	}
	return Settings{
		Content: ContentSettings{
			Root:            filepath.Join(base, "content"),
			DefaultType:     DefaultPostType,
			DefaultAuthorID: 1,
			CacheTTL:        time.Hour,
			Renderer:        RendererGoldmark,
			CacheBackend:    CacheBackendSQLite,
		},
		Git: GitSettings{
			Binary:      "git",
			Timeout:     60 * time.Second,
			AuthorName:  "Folio",
			AuthorEmail: "folio@localhost",
		},
		Remote: RemoteSettings{
			Branch:       "main",
			Timeout:      30 * time.Second,
			PullInterval: time.Hour,
		},
		OAuth: OAuthSettings{
			Scopes: []string{"repo"},
		},
		Export: ExportSettings{
			BatchSize:     100,
			JobTTL:        24 * time.Hour,
			OutputDir:     filepath.Join(base, "content"),
			BatchInterval: 10 * time.Second,
		},
		Server: ServerSettings{
			Addr: "127.0.0.1:8080",
		},
		DataDir: filepath.Join(base, "data"),
	}
}
