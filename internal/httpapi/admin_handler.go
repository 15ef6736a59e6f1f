package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkravets/brewcart/internal/catalog"
	"github.com/mkravets/brewcart/internal/orders"
)

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status"`
}

// AdminCreateProduct inserts a catalog entry into the system of record
// and drops the cached snapshot so readers see it.
func (s *Server) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	if s.adminStore == nil {
		respondError(w, http.StatusNotImplemented, "not_supported", "catalog store not configured")
		return
	}

	var rec catalog.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if rec.ID == "" || rec.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_entry", "id and name are required")
		return
	}
	if rec.Kind != catalog.KindProduct && rec.Kind != catalog.KindBean {
		respondError(w, http.StatusBadRequest, "invalid_entry", "kind must be product or bean")
		return
	}
	if rec.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_entry", "price must not be negative")
		return
	}

	if err := s.adminStore.CreateEntry(r.Context(), rec); err != nil {
		respondDomainError(w, err)
		return
	}
	s.catalog.Invalidate(r.Context())

	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if s.adminStore == nil {
		respondError(w, http.StatusNotImplemented, "not_supported", "catalog store not configured")
		return
	}

	var rec catalog.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	rec.ID = chi.URLParam(r, "entry_id")
	if rec.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_entry", "price must not be negative")
		return
	}

	if err := s.adminStore.UpdateEntry(r.Context(), rec); err != nil {
		respondDomainError(w, err)
		return
	}
	s.catalog.Invalidate(r.Context())

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if s.adminStore == nil {
		respondError(w, http.StatusNotImplemented, "not_supported", "catalog store not configured")
		return
	}

	entryID := chi.URLParam(r, "entry_id")
	if err := s.adminStore.DeleteEntry(r.Context(), entryID); err != nil {
		respondDomainError(w, err)
		return
	}
	s.catalog.Invalidate(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// AdminUpdateOrderStatus applies a status transition to an order.
func (s *Server) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	var req UpdateOrderStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	to := orders.Status(req.Status)
	switch to {
	case orders.StatusPending, orders.StatusCompleted, orders.StatusCancelled:
	default:
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status")
		return
	}

	if err := s.orders.UpdateStatus(r.Context(), id, to); err != nil {
		respondDomainError(w, err)
		return
	}

	order, err := s.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func (s *Server) AdminClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := s.orders.ClearOrders(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
