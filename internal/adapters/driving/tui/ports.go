// Package tui provides an interactive terminal user interface for folio.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Content answers post listings. Required.
	Content driving.ContentService

	// Export reports and cancels export jobs. Optional.
	Export driving.ExportService

	// Version lists content history. Optional; the history view reports
	// that version control is unavailable without it.
	Version driving.VersionService

	// DefaultType is the content type the posts view opens with.
	DefaultType string
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Content == nil {
		return ErrMissingContentService
	}
	return nil
}
