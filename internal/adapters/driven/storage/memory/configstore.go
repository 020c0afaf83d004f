package memory

import (
	"github.com/custodia-labs/folio/internal/adapters/driven/config/flat"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory for `folio --no-config` runs and
// tests. Save and Load do nothing.
type ConfigStore struct {
	flat.Values
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

func (s *ConfigStore) Set(key string, value any) error {
	s.Put(key, value)
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

// Path is ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
