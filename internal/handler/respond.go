package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
	"github.com/lumiere-skincare/storefront-api/internal/domain/order"
	"github.com/lumiere-skincare/storefront-api/internal/domain/payment"
	"github.com/lumiere-skincare/storefront-api/internal/domain/product"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Code: status, Message: message})
}

// decode parses the request body into v, rejecting unknown top-level types
// and trailing garbage.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decoding request body")
	}
	return nil
}

// respondError maps a domain error to its HTTP status and writes the body.
// Unrecognized errors become 500 and are logged with their cause.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, cart.ErrNotFound):
		writeError(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "Item not found")
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, payment.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Payment service is not configured")
	case errors.Is(err, payment.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Invalid amount")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
