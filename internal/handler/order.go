package handler

import (
	"net/http"
	"time"

	"github.com/lumiere-skincare/storefront-api/internal/domain/order"
)

type orderItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	Items           []orderItemDTO `json:"items"`
	ShippingAddress order.Address  `json:"shippingAddress"`
	Subtotal        float64        `json:"subtotal"`
	Shipping        float64        `json:"shipping"`
	Total           float64        `json:"total"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentStatus   string         `json:"paymentStatus"`
	RazorpayOrderID string         `json:"razorpayOrderId,omitempty"`
	IsPaid          bool           `json:"isPaid"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (h *Handler) toOrderDTO(o *order.Order) orderDTO {
	items := make([]orderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			Image:     h.resolveImage(it.Image),
		}
	}
	return orderDTO{
		ID:              o.ID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		Subtotal:        o.Subtotal.InexactFloat64(),
		Shipping:        o.Shipping.InexactFloat64(),
		Total:           o.Total.InexactFloat64(),
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   string(o.PaymentStatus),
		RazorpayOrderID: o.GatewayOrderID,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	dtos := make([]orderDTO, len(orders))
	for i := range orders {
		dtos[i] = h.toOrderDTO(&orders[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderDTO(o))
}

type createOrderRequest struct {
	ShippingAddress order.Address `json:"shippingAddress"`
	PaymentIntentID string        `json:"paymentIntentId"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.ShippingAddress.Complete() {
		writeError(w, http.StatusBadRequest, "Incomplete shipping address")
		return
	}

	o, err := h.orders.Checkout(r.Context(), UserIDFromContext(r.Context()), order.CheckoutInput{
		Address:    req.ShippingAddress,
		PaymentRef: req.PaymentIntentID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.orderPlaced(r.Context(), o.PaymentMethod)
	writeJSON(w, http.StatusCreated, h.toOrderDTO(o))
}
