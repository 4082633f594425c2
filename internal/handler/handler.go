// Package handler exposes the storefront REST API over net/http.
package handler

import (
	"net/http"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
	"github.com/lumiere-skincare/storefront-api/internal/domain/order"
	"github.com/lumiere-skincare/storefront-api/internal/domain/product"
	"github.com/lumiere-skincare/storefront-api/pkg/httpmiddleware"
)

// Handler holds the services backing the HTTP API.
type Handler struct {
	products product.Repository
	carts    *cart.Service
	orders   *order.Service

	// imageBaseURL is prepended to relative product image paths so the
	// frontend can resolve them against its asset host.
	imageBaseURL string

	// metrics may be nil, in which case no counters are recorded.
	metrics *Metrics
}

// New creates a Handler.
func New(products product.Repository, carts *cart.Service, orders *order.Service, metrics *Metrics, imageBaseURL string) *Handler {
	return &Handler{
		products:     products,
		carts:        carts,
		orders:       orders,
		imageBaseURL: imageBaseURL,
		metrics:      metrics,
	}
}

// Register mounts all API routes on mux. Catalog routes are public; cart,
// order, and payment routes go through the auth middleware.
func (h *Handler) Register(mux *http.ServeMux, auth httpmiddleware.Middleware) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	authed := func(f http.HandlerFunc) http.Handler {
		return auth(f)
	}

	mux.Handle("GET /api/cart", authed(h.getCart))
	mux.Handle("POST /api/cart", authed(h.addCartItem))
	mux.Handle("PUT /api/cart/{itemId}", authed(h.updateCartItem))
	mux.Handle("DELETE /api/cart/{itemId}", authed(h.removeCartItem))
	mux.Handle("DELETE /api/cart", authed(h.clearCart))

	mux.Handle("GET /api/orders", authed(h.listOrders))
	mux.Handle("GET /api/orders/{id}", authed(h.getOrder))
	mux.Handle("POST /api/orders", authed(h.createOrder))

	mux.Handle("POST /api/payments/create-order", authed(h.createPaymentOrder))
	mux.Handle("POST /api/payments/verify-payment", authed(h.verifyPayment))
}
