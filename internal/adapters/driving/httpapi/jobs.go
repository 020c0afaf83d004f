package httpapi

import (
	"net/http"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// handleJobStatus reports export progress. Unknown jobs answer 404 with a
// not_found progress body so pollers can stop.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.ports.Export == nil {
		notImplemented(w, "export")
		return
	}
	progress := s.ports.Export.Status(r.Context(), r.PathValue("id"))
	status := http.StatusOK
	if progress.Status == domain.JobNotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, progress)
}
