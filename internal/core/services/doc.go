// Package services holds Folio's use cases: content queries, exports,
// version history, remote sync and the task scheduler. Each service
// implements a driving port and reaches storage, git and GitHub only
// through driven ports.
package services
