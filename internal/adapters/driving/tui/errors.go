package tui

import "errors"

// ErrMissingContentService is returned when the content service is not provided.
var ErrMissingContentService = errors.New("tui: content service is required")

// ErrMissingExportService is returned when an export is watched without an
// export service.
var ErrMissingExportService = errors.New("tui: export service is required to watch a job")

// ErrMissingJobID is returned when an export is watched without a job ID.
var ErrMissingJobID = errors.New("tui: job id is required")
