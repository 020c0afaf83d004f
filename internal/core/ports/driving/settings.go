package driving

import "github.com/custodia-labs/folio/internal/core/domain"

// SettingsService reads and updates persisted settings.
type SettingsService interface {
	// Get resolves settings from defaults and the config file.
	Get() domain.Settings

	// Set validates and persists one dot-notation key.
	Set(key, value string) error

	// Keys lists the keys Set accepts.
	Keys() []string

	// Value returns the current value of a key as text.
	Value(key string) (string, error)
}
