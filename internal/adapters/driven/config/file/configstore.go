package file

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/folio/internal/adapters/driven/config/flat"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

const configFile = "config.toml"

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file. Reads are served from memory;
// every Set rewrites the file.
type ConfigStore struct {
	flat.Values

	writeMu sync.Mutex
	path    string
}

// NewConfigStore opens dir/config.toml, or ~/.folio/config.toml when dir is
// empty. A missing file is an empty configuration.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".folio")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, configFile)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Set stores value at key and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	if key == "" {
		return errors.New("config key is required")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.Put(key, value)
	return s.write()
}

func (s *ConfigStore) Save() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write()
}

// write replaces the file atomically with mode 0600.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(s.Nested())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	// atomic.WriteFile only preserves the mode of a file that already existed.
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", s.path, err)
	}
	return nil
}

// Load rereads the file, discarding unsaved values.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(map[string]any{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	var tables map[string]any
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("parsing config %s: %w", s.path, err)
	}
	s.Replace(flat.Flatten(tables))
	return nil
}

func (s *ConfigStore) Path() string {
	return s.path
}
