package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mkravets/brewcart/internal/checkout"
)

type SubmitPaymentRequestDTO struct {
	Method     string `json:"method"`
	CardNumber string `json:"card_number,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	HolderName string `json:"holder_name,omitempty"`
}

// BeginCheckout freezes the cart and returns the charge breakdown.
func (s *Server) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	flow, err := s.flowFor(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	review, err := flow.Begin()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toReviewDTO(review))
}

// SubmitPayment charges the frozen snapshot. On approval the order lands
// in history, the cart is cleared and the flow is retired.
func (s *Server) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	var req SubmitPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	flow, err := s.flowFor(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	order, err := flow.Submit(r.Context(), checkout.Details{
		Method:     checkout.Method(req.Method),
		CardNumber: req.CardNumber,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
		HolderName: req.HolderName,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	s.discardFlow(userID)
	s.carts.Persist(r.Context(), userID)

	respondJSON(w, http.StatusCreated, toOrderDTO(order))
}

// AbandonCheckout leaves checkout without charging. The cart is untouched.
func (s *Server) AbandonCheckout(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	flow, err := s.flowFor(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if err := flow.Abandon(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}
