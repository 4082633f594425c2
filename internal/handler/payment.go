package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/lumiere-skincare/storefront-api/internal/domain/order"
	"github.com/lumiere-skincare/storefront-api/internal/domain/payment"
)

type createPaymentOrderRequest struct {
	// Amount is the client's view of the total, used only as a sanity check.
	// The charged amount is always derived from the server-side cart.
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	ShippingAddress order.Address `json:"shippingAddress"`
}

type createPaymentOrderResponse struct {
	ID              string  `json:"id"`
	RazorpayOrderID string  `json:"razorpayOrderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

func (h *Handler) createPaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req createPaymentOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Amount < 1 {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}

	o, err := h.orders.Checkout(r.Context(), UserIDFromContext(r.Context()), order.CheckoutInput{
		Address:    req.ShippingAddress,
		OpenIntent: true,
		Currency:   req.Currency,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.orderPlaced(r.Context(), o.PaymentMethod)
	writeJSON(w, http.StatusOK, createPaymentOrderResponse{
		ID:              o.ID,
		RazorpayOrderID: o.GatewayOrderID,
		Amount:          o.Total.InexactFloat64(),
		Currency:        currencyOrDefault(req.Currency),
	})
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "INR"
	}
	return currency
}

type verifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type verifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, "Missing payment details")
		return
	}

	o, err := h.orders.ConfirmPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, payment.ErrSignatureMismatch) {
			h.metrics.paymentVerified(r.Context(), false)
			writeJSON(w, http.StatusBadRequest, verifyPaymentResponse{
				Success: false,
				Message: "Payment verification failed",
			})
			return
		}
		respondError(w, r, err)
		return
	}

	h.metrics.paymentVerified(r.Context(), true)
	writeJSON(w, http.StatusOK, verifyPaymentResponse{
		Success: true,
		Message: "Payment verified successfully",
		OrderID: o.ID,
	})
}
