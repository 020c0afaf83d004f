// Package file provides file-based configuration for Folio.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.folio/config.toml, written atomically
//   - ApplyEnv: FOLIO_* environment overrides applied after the file
package file
