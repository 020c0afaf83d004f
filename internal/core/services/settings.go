package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindDuration
	kindList
)

// setting binds a config key to a field of domain.Settings.
type setting struct {
	kind     settingKind
	field    func(*domain.Settings) any
	validate func(string) error
}

//nolint:gosec // G101: config key names, not credentials.
var settingKeys = map[string]setting{
	"content.root":              {kind: kindString, field: func(s *domain.Settings) any { return &s.Content.Root }, validate: notEmpty},
	"content.default_type":      {kind: kindString, field: func(s *domain.Settings) any { return &s.Content.DefaultType }, validate: validTypeName},
	"content.default_author_id": {kind: kindInt, field: func(s *domain.Settings) any { return &s.Content.DefaultAuthorID }, validate: positiveInt},
	"content.cache_ttl":         {kind: kindDuration, field: func(s *domain.Settings) any { return &s.Content.CacheTTL }, validate: positiveDuration},
	"content.renderer":          {kind: kindString, field: func(s *domain.Settings) any { return &s.Content.Renderer }, validate: validRenderer},
	"content.cache_backend":     {kind: kindString, field: func(s *domain.Settings) any { return &s.Content.CacheBackend }, validate: validCacheBackend},
	"git.binary":                {kind: kindString, field: func(s *domain.Settings) any { return &s.Git.Binary }, validate: notEmpty},
	"git.timeout":               {kind: kindDuration, field: func(s *domain.Settings) any { return &s.Git.Timeout }, validate: positiveDuration},
	"git.author_name":           {kind: kindString, field: func(s *domain.Settings) any { return &s.Git.AuthorName }, validate: notEmpty},
	"git.author_email":          {kind: kindString, field: func(s *domain.Settings) any { return &s.Git.AuthorEmail }, validate: notEmpty},
	keyRemoteURL:                {kind: kindString, field: func(s *domain.Settings) any { return &s.Remote.URL }},
	"remote.branch":             {kind: kindString, field: func(s *domain.Settings) any { return &s.Remote.Branch }, validate: notEmpty},
	"remote.owner":              {kind: kindString, field: func(s *domain.Settings) any { return &s.Remote.Owner }},
	"remote.repo":               {kind: kindString, field: func(s *domain.Settings) any { return &s.Remote.Repo }},
	"remote.api_base_url":       {kind: kindString, field: func(s *domain.Settings) any { return &s.Remote.APIBaseURL }},
	"remote.timeout":            {kind: kindDuration, field: func(s *domain.Settings) any { return &s.Remote.Timeout }, validate: positiveDuration},
	"remote.webhook_secret":     {kind: kindString, field: func(s *domain.Settings) any { return &s.Remote.WebhookSecret }},
	"remote.pull_interval":      {kind: kindDuration, field: func(s *domain.Settings) any { return &s.Remote.PullInterval }, validate: anyDuration},
	"oauth.client_id":           {kind: kindString, field: func(s *domain.Settings) any { return &s.OAuth.ClientID }},
	"oauth.client_secret":       {kind: kindString, field: func(s *domain.Settings) any { return &s.OAuth.ClientSecret }},
	"oauth.scopes":              {kind: kindList, field: func(s *domain.Settings) any { return &s.OAuth.Scopes }},
	"export.batch_size":         {kind: kindInt, field: func(s *domain.Settings) any { return &s.Export.BatchSize }, validate: positiveInt},
	"export.job_ttl":            {kind: kindDuration, field: func(s *domain.Settings) any { return &s.Export.JobTTL }, validate: positiveDuration},
	"export.output_dir":         {kind: kindString, field: func(s *domain.Settings) any { return &s.Export.OutputDir }, validate: notEmpty},
	"export.batch_interval":     {kind: kindDuration, field: func(s *domain.Settings) any { return &s.Export.BatchInterval }, validate: positiveDuration},
	"server.addr":               {kind: kindString, field: func(s *domain.Settings) any { return &s.Server.Addr }, validate: notEmpty},
	"data_dir":                  {kind: kindString, field: func(s *domain.Settings) any { return &s.DataDir }, validate: notEmpty},
}

// secretKeys are masked by Value.
var secretKeys = map[string]bool{
	"remote.webhook_secret": true,
	"oauth.client_secret":   true,
}

// SettingsService resolves settings from defaults and the config file.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns defaults overlaid with every key present in the config file.
// Values of the wrong type are ignored.
func (s *SettingsService) Get() domain.Settings {
	settings := domain.DefaultSettings()
	for key, def := range settingKeys {
		if _, ok := s.configStore.Get(key); !ok {
			continue
		}
		switch ptr := def.field(&settings).(type) {
		case *string:
			if v := s.configStore.GetString(key); v != "" {
				*ptr = v
			}
		case *int:
			if v := s.configStore.GetInt(key); v != 0 {
				*ptr = v
			}
		case *int64:
			if v := s.configStore.GetInt(key); v != 0 {
				*ptr = int64(v)
			}
		case *time.Duration:
			if raw := s.configStore.GetString(key); raw != "" {
				if d, err := time.ParseDuration(raw); err == nil {
					*ptr = d
				}
			}
		case *[]string:
			if v := s.configStore.GetStringSlice(key); v != nil {
				*ptr = v
			}
		}
	}
	return settings
}

// Set validates value and persists it under key.
func (s *SettingsService) Set(key, value string) error {
	def, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)
	if def.validate != nil {
		if err := def.validate(value); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
	}

	var stored any
	switch def.kind {
	case kindInt:
		n, _ := strconv.Atoi(value)
		stored = n
	case kindList:
		stored = splitList(value)
	default:
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settings Set accepts, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the resolved value of key as text. Secrets are masked.
func (s *SettingsService) Value(key string) (string, error) {
	def, ok := settingKeys[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	settings := s.Get()
	var out string
	switch ptr := def.field(&settings).(type) {
	case *string:
		out = *ptr
	case *int:
		out = strconv.Itoa(*ptr)
	case *int64:
		out = strconv.FormatInt(*ptr, 10)
	case *time.Duration:
		out = ptr.String()
	case *[]string:
		out = strings.Join(*ptr, ",")
	}
	if secretKeys[key] && out != "" {
		return "********", nil
	}
	return out, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func notEmpty(v string) error {
	if v == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}

func validTypeName(v string) error {
	if v == "" || strings.ContainsAny(v, `/\ .`) {
		return fmt.Errorf("invalid post type %q", v)
	}
	return nil
}

func validRenderer(v string) error {
	if v != domain.RendererGoldmark && v != domain.RendererBuiltin {
		return fmt.Errorf("renderer must be %s or %s", domain.RendererGoldmark, domain.RendererBuiltin)
	}
	return nil
}

func validCacheBackend(v string) error {
	if v != domain.CacheBackendSQLite && v != domain.CacheBackendMemory {
		return fmt.Errorf("cache backend must be %s or %s", domain.CacheBackendSQLite, domain.CacheBackendMemory)
	}
	return nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func positiveDuration(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("must be a positive duration such as 30s")
	}
	return nil
}

// anyDuration accepts zero, which disables the task it configures.
func anyDuration(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fmt.Errorf("must be a duration such as 1h, or 0 to disable")
	}
	return nil
}
