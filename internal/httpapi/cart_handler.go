package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AddItemRequestDTO struct {
	EntryID    string `json:"entry_id"`
	VariantKey string `json:"variant_key"`
}

type UpdateQuantityRequestDTO struct {
	VariantKey string `json:"variant_key"`
	Quantity   int    `json:"quantity"`
}

// AddItem puts one unit of a catalog entry into the cart. Pricing comes
// from the catalog snapshot at add time; the cart captures it.
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.EntryID == "" {
		respondError(w, http.StatusBadRequest, "invalid_entry_id", "entry_id is required")
		return
	}

	snap, err := s.catalog.Snapshot(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	item, ok := snap.Find(req.EntryID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "catalog entry not found")
		return
	}

	engine, err := s.carts.Engine(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := engine.AddItem(item, req.VariantKey, nil); err != nil {
		respondDomainError(w, err)
		return
	}
	s.carts.Persist(r.Context(), userID)

	respondJSON(w, http.StatusCreated, toCartDTO(engine.State()))
}

func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	engine, err := s.carts.Engine(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartDTO(engine.State()))
}

// UpdateQuantity sets a slot's quantity to an absolute value. Zero or
// negative removes the slot.
func (s *Server) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	entryID := chi.URLParam(r, "entry_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	engine, err := s.carts.Engine(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := engine.UpdateQuantity(entryID, req.VariantKey, req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}
	s.carts.Persist(r.Context(), userID)

	respondJSON(w, http.StatusOK, toCartDTO(engine.State()))
}

func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	entryID := chi.URLParam(r, "entry_id")
	variantKey := r.URL.Query().Get("variant_key")

	engine, err := s.carts.Engine(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	engine.RemoveItem(entryID, variantKey)
	s.carts.Persist(r.Context(), userID)

	respondJSON(w, http.StatusOK, toCartDTO(engine.State()))
}

func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	engine, err := s.carts.Engine(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	engine.Clear()
	s.carts.Persist(r.Context(), userID)

	respondJSON(w, http.StatusOK, toCartDTO(engine.State()))
}
