package mcp

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server uses.
type Ports struct {
	// Content answers post listings and lookups.
	Content driving.ContentService

	// Version exposes content history. Optional; the history tool is only
	// registered when set.
	Version driving.VersionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Content == nil {
		return ErrMissingContentService
	}
	return nil
}
