package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListProducts serves the current catalog snapshot.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap.Entries)
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entry_id")

	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	for _, rec := range snap.Entries {
		if rec.ID == entryID {
			respondJSON(w, http.StatusOK, rec)
			return
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "catalog entry not found")
}
