// Package mcp exposes Folio content to MCP clients: post listing and lookup
// tools plus read-only resources.
package mcp

import "errors"

// ErrMissingContentService is returned when the content service is not provided.
var ErrMissingContentService = errors.New("mcp: content service is required")
