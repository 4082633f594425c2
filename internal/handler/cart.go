package handler

import (
	"net/http"
	"time"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
)

type cartItemDTO struct {
	ID       string     `json:"id"`
	Product  productDTO `json:"product"`
	Quantity int        `json:"quantity"`
}

type cartDTO struct {
	UserID    string        `json:"userId"`
	Items     []cartItemDTO `json:"items"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (h *Handler) toCartDTO(c *cart.Cart) cartDTO {
	items := make([]cartItemDTO, len(c.Items))
	for i, it := range c.Items {
		items[i] = cartItemDTO{
			ID:       it.ID,
			Product:  h.toProductDTO(it.Product),
			Quantity: it.Quantity,
		}
	}
	return cartDTO{UserID: c.UserID, Items: items, UpdatedAt: c.UpdatedAt}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartDTO(c))
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	c, err := h.carts.AddItem(r.Context(), UserIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartDTO(c))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.carts.UpdateItem(r.Context(), UserIDFromContext(r.Context()), r.PathValue("itemId"), req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartDTO(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(), UserIDFromContext(r.Context()), r.PathValue("itemId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartDTO(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartDTO(c))
}
