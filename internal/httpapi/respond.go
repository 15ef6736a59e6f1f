package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mkravets/brewcart/internal/cart"
	"github.com/mkravets/brewcart/internal/catalog"
	"github.com/mkravets/brewcart/internal/catalog/store"
	"github.com/mkravets/brewcart/internal/checkout"
	"github.com/mkravets/brewcart/internal/orders"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondDomainError maps domain errors to HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, cart.ErrInvalidInput):
		httpStatus = http.StatusBadRequest
		code = "invalid_input"
	case errors.Is(err, cart.ErrSlotNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, store.ErrEntryNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, checkout.ErrEmptyCart):
		httpStatus = http.StatusConflict
		code = "empty_cart"
	case errors.Is(err, checkout.ErrIllegalTransition),
		errors.Is(err, orders.ErrInvalidTransition):
		httpStatus = http.StatusConflict
		code = "illegal_state"
	case errors.Is(err, checkout.ErrInvalidPayment):
		httpStatus = http.StatusBadRequest
		code = "invalid_payment"
	case errors.Is(err, checkout.ErrPaymentDeclined):
		httpStatus = http.StatusPaymentRequired
		code = "payment_declined"
	case errors.Is(err, catalog.ErrUnavailable):
		httpStatus = http.StatusServiceUnavailable
		code = "catalog_unavailable"
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, httpStatus, code, err.Error())
}
