// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements multiple store interfaces through a single database connection:
//
//   - CacheStore: rendered listing cache with per-entry expiry
//   - JobStore: export job records with a TTL
//   - PostStore: stored (non-file) posts
//   - AuthorStore: author logins, also the AuthorDirectory
//   - CredentialsStore: the GitHub credential
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.folio/data/folio.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite
// locking in WAL mode with a busy timeout.
package sqlite
