package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/pipeline"
)

// publisher returns the sink or writes a 503 when publishing is off.
func (s *Server) publisher(w http.ResponseWriter) *pipeline.Publisher {
	p := s.orchestrator.Publisher()
	if p == nil {
		jsonError(w, "pathstore publishing is not configured", http.StatusServiceUnavailable)
	}
	return p
}

// handleListOutlines lists outlines published to pathstore.
func (s *Server) handleListOutlines(w http.ResponseWriter, r *http.Request) {
	p := s.publisher(w)
	if p == nil {
		return
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := p.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list outlines: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outlines": items})
}

// handleGetOutline returns a published outline in the output format.
func (s *Server) handleGetOutline(w http.ResponseWriter, r *http.Request) {
	p := s.publisher(w)
	if p == nil {
		return
	}
	o, err := p.Fetch(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		jsonError(w, "failed to read outline: "+err.Error(), http.StatusBadGateway)
		return
	}
	if o == nil {
		jsonError(w, "outline not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// handleDeleteOutline removes a published outline and its hash index entry.
func (s *Server) handleDeleteOutline(w http.ResponseWriter, r *http.Request) {
	p := s.publisher(w)
	if p == nil {
		return
	}
	docID := chi.URLParam(r, "docID")
	if err := p.Delete(r.Context(), docID); err != nil {
		jsonError(w, "failed to delete outline: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}
