package file

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// envOverrides lists the FOLIO_* variables. Fields start out holding the
// current settings; env.Parse only touches fields whose variable is set.
type envOverrides struct {
	ContentRoot       string        `env:"FOLIO_CONTENT_ROOT"`
	DefaultType       string        `env:"FOLIO_DEFAULT_TYPE"`
	DefaultAuthorID   int64         `env:"FOLIO_DEFAULT_AUTHOR_ID"`
	CacheTTL          time.Duration `env:"FOLIO_CACHE_TTL"`
	CacheBackend      string        `env:"FOLIO_CACHE_BACKEND"`
	Renderer          string        `env:"FOLIO_RENDERER"`
	JobTTL            time.Duration `env:"FOLIO_JOB_TTL"`
	BatchSize         int           `env:"FOLIO_BATCH_SIZE"`
	ExportDir         string        `env:"FOLIO_EXPORT_DIR"`
	GitBinary         string        `env:"FOLIO_GIT_BINARY"`
	GitTimeout        time.Duration `env:"FOLIO_GIT_TIMEOUT"`
	RemoteURL         string        `env:"FOLIO_REMOTE_URL"`
	RemoteBranch      string        `env:"FOLIO_REMOTE_BRANCH"`
	GitHubOwner       string        `env:"FOLIO_GITHUB_OWNER"`
	GitHubRepo        string        `env:"FOLIO_GITHUB_REPO"`
	GitHubAPIBaseURL  string        `env:"FOLIO_GITHUB_API_URL"`
	WebhookSecret     string        `env:"FOLIO_WEBHOOK_SECRET"`
	OAuthClientID     string        `env:"FOLIO_OAUTH_CLIENT_ID"`
	OAuthClientSecret string        `env:"FOLIO_OAUTH_CLIENT_SECRET"`
	OAuthScopes       []string      `env:"FOLIO_OAUTH_SCOPES" envSeparator:","`
	ServerAddr        string        `env:"FOLIO_SERVER_ADDR"`
	DataDir           string        `env:"FOLIO_DATA_DIR"`
}

// ApplyEnv overlays FOLIO_* environment variables onto settings.
// Unset variables leave the existing value alone.
func ApplyEnv(s *domain.Settings) error {
	o := envOverrides{
		ContentRoot:       s.Content.Root,
		DefaultType:       s.Content.DefaultType,
		DefaultAuthorID:   s.Content.DefaultAuthorID,
		CacheTTL:          s.Content.CacheTTL,
		CacheBackend:      s.Content.CacheBackend,
		Renderer:          s.Content.Renderer,
		JobTTL:            s.Export.JobTTL,
		BatchSize:         s.Export.BatchSize,
		ExportDir:         s.Export.OutputDir,
		GitBinary:         s.Git.Binary,
		GitTimeout:        s.Git.Timeout,
		RemoteURL:         s.Remote.URL,
		RemoteBranch:      s.Remote.Branch,
		GitHubOwner:       s.Remote.Owner,
		GitHubRepo:        s.Remote.Repo,
		GitHubAPIBaseURL:  s.Remote.APIBaseURL,
		WebhookSecret:     s.Remote.WebhookSecret,
		OAuthClientID:     s.OAuth.ClientID,
		OAuthClientSecret: s.OAuth.ClientSecret,
		OAuthScopes:       s.OAuth.Scopes,
		ServerAddr:        s.Server.Addr,
		DataDir:           s.DataDir,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	s.Content.Root = o.ContentRoot
	s.Content.DefaultType = o.DefaultType
	s.Content.DefaultAuthorID = o.DefaultAuthorID
	s.Content.CacheTTL = o.CacheTTL
	s.Content.CacheBackend = o.CacheBackend
	s.Content.Renderer = o.Renderer
	s.Export.JobTTL = o.JobTTL
	s.Export.BatchSize = o.BatchSize
	s.Export.OutputDir = o.ExportDir
	s.Git.Binary = o.GitBinary
	s.Git.Timeout = o.GitTimeout
	s.Remote.URL = o.RemoteURL
	s.Remote.Branch = o.RemoteBranch
	s.Remote.Owner = o.GitHubOwner
	s.Remote.Repo = o.GitHubRepo
	s.Remote.APIBaseURL = o.GitHubAPIBaseURL
	s.Remote.WebhookSecret = o.WebhookSecret
	s.OAuth.ClientID = o.OAuthClientID
	s.OAuth.ClientSecret = o.OAuthClientSecret
	s.OAuth.Scopes = o.OAuthScopes
	s.Server.Addr = o.ServerAddr
	s.DataDir = o.DataDir
	return nil
}
