package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Total headers mirror the found and page counts of a listing.
const (
	headerTotal      = "X-Folio-Total"
	headerTotalPages = "X-Folio-TotalPages"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := s.ports.Content.Query(r.Context(), q)
	if err != nil {
		log.Warn("list posts: %v", err)
		writeError(w, err)
		return
	}
	w.Header().Set(headerTotal, strconv.Itoa(list.FoundCount))
	w.Header().Set(headerTotalPages, strconv.Itoa(list.PageCount))
	writeJSON(w, http.StatusOK, list)
}

// handleGetPost answers 404 for drafts and private posts so their slugs do
// not leak through the public API.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postType, slug := r.PathValue("type"), r.PathValue("slug")
	post, err := s.ports.Content.Get(r.Context(), postType, slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if !post.Published() {
		writeError(w, fmt.Errorf("%s/%s: %w", postType, slug, domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.ports.Content.Types(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if types == nil {
		types = []string{}
	}
	writeJSON(w, http.StatusOK, types)
}

// parseQuery reads type, page, per_page, s and status. per_page=-1 asks
// for every post. The public listing only serves published posts, so any
// other status is refused.
func parseQuery(r *http.Request) (domain.Query, error) {
	v := r.URL.Query()
	q := domain.Query{
		Type:   v.Get("type"),
		Search: v.Get("s"),
		Status: v.Get("status"),
		Slug:   v.Get("slug"),
		Main:   true,
		Mode:   domain.ModeDisplay,
	}

	var err error
	if q.Page, err = intParam(v.Get("page"), "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intParam(v.Get("per_page"), "per_page"); err != nil {
		return q, err
	}
	if q.PageSize < domain.AllPages {
		return q, fmt.Errorf("%w: per_page must be -1 or positive", domain.ErrInvalidInput)
	}

	switch q.Status {
	case "", domain.StatusPublish:
		q.Status = domain.StatusPublish
	case domain.StatusDraft, domain.StatusPrivate, domain.StatusAny:
		return q, fmt.Errorf("%w: status %q is not public", domain.ErrInvalidInput, q.Status)
	default:
		return q, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, q.Status)
	}
	return q, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}
