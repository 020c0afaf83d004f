package github

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Config identifies the repository the client works against.
type Config struct {
	Owner string
	Repo  string
	// BaseURL overrides the API root, e.g. for GitHub Enterprise.
	BaseURL string
	Timeout time.Duration
}

var remotePattern = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRemoteURL extracts owner and repository from an HTTPS or SSH
// GitHub remote URL.
func ParseRemoteURL(remoteURL string) (owner, repo string, ok bool) {
	m := remotePattern.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ConfigFromSettings builds a Config. Owner and repository fall back to
// those parsed from the remote URL.
func ConfigFromSettings(remote domain.RemoteSettings) (Config, error) {
	cfg := Config{
		Owner:   remote.Owner,
		Repo:    remote.Repo,
		BaseURL: remote.APIBaseURL,
		Timeout: remote.Timeout,
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		if owner, repo, ok := ParseRemoteURL(remote.URL); ok {
			if cfg.Owner == "" {
				cfg.Owner = owner
			}
			if cfg.Repo == "" {
				cfg.Repo = repo
			}
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return cfg, fmt.Errorf("%w: set remote.owner and remote.repo or a github.com remote URL",
			domain.ErrRemoteNotConfigured)
	}
	return cfg, nil
}
