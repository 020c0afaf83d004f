package driven

import "time"

// ConfigStore is the user's settings file, addressed by dotted keys such as
// "remote.branch". Typed getters return the zero value for a missing key or
// a value of the wrong type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	// GetDuration accepts Go duration strings like "90s".
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string

	// Set writes through to storage.
	Set(key string, value any) error
	Save() error
	Load() error

	// Path is where the settings live, for display.
	Path() string
}
