package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
	"github.com/lumiere-skincare/storefront-api/internal/domain/payment"
)

// CartReader is the slice of the cart store checkout needs.
type CartReader interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
}

// ShippingRule is the flat-fee-with-free-threshold shipping policy. The fee
// is waived only when the subtotal strictly exceeds the threshold.
type ShippingRule struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// Fee returns the shipping fee for a given subtotal.
func (r ShippingRule) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeThreshold) {
		return decimal.Zero
	}
	return r.FlatFee
}

// CheckoutInput holds the caller-provided checkout parameters. Line items
// and totals always come from the current cart, never from the client.
type CheckoutInput struct {
	Address Address

	// OpenIntent asks the gateway to open a payment intent for the derived
	// total before the order is persisted.
	OpenIntent bool
	// Currency for the gateway intent; defaults to INR.
	Currency string
	// PaymentRef is a pre-existing intent reference supplied by the client
	// when OpenIntent is false.
	PaymentRef string
}

// Service implements checkout, retrieval, and payment confirmation.
type Service struct {
	carts    CartReader
	orders   Repository
	gateway  payment.Gateway // nil when not configured
	verifier *payment.Verifier
	rule     ShippingRule
}

// NewService creates an order Service. gateway may be nil, in which case
// checkouts that need a payment intent fail with payment.ErrUnavailable.
func NewService(
	carts CartReader,
	orders Repository,
	gateway payment.Gateway,
	verifier *payment.Verifier,
	rule ShippingRule,
) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		gateway:  gateway,
		verifier: verifier,
		rule:     rule,
	}
}

// Checkout exchanges the user's cart for a pending order: it snapshots the
// cart lines at current catalog prices, computes totals, optionally opens a
// gateway payment intent for the total, then persists the order and clears
// the cart in one transaction.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*Order, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, errors.Wrap(err, "get cart")
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]LineItem, len(c.Items))
	subtotal := decimal.Zero
	for i, it := range c.Items {
		items[i] = LineItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Image:     it.Product.Image,
		}
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	subtotal = subtotal.Round(2)
	shipping := s.rule.Fee(subtotal)
	total := subtotal.Add(shipping)

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: in.Address,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           total,
		PaymentMethod:   "card",
		PaymentStatus:   PaymentPending,
		PaymentRef:      in.PaymentRef,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if in.OpenIntent {
		if s.gateway == nil {
			return nil, payment.ErrUnavailable
		}
		currency := in.Currency
		if currency == "" {
			currency = "INR"
		}
		receipt := fmt.Sprintf("order_%s_%d", userID, now.UnixMilli())

		gatewayOrderID, err := s.gateway.OpenIntent(ctx, total, currency, receipt)
		if err != nil {
			return nil, errors.Wrap(err, "open payment intent")
		}
		o.PaymentMethod = "razorpay"
		o.GatewayOrderID = gatewayOrderID
	}

	if err := s.orders.CreateAndClearCart(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// List returns the caller's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns a single order. The existence check runs before the ownership
// check, but both ultimately deny non-owners.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrForbidden
	}
	return o, nil
}

// ConfirmPayment reconciles a gateway callback with the stored order. The
// signature must match HMAC(secret, gatewayOrderID|paymentID); on mismatch
// the order is left untouched and payment.ErrSignatureMismatch is returned.
func (s *Service) ConfirmPayment(ctx context.Context, orderID, paymentID, signature string) (*Order, error) {
	if s.verifier == nil {
		return nil, payment.ErrUnavailable
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.verifier.Verify(o.GatewayOrderID, paymentID, signature) {
		return nil, payment.ErrSignatureMismatch
	}

	paidAt := time.Now().UTC()
	if err := s.orders.MarkPaid(ctx, o.ID, paymentID, paidAt); err != nil {
		return nil, errors.Wrap(err, "mark paid")
	}

	o.PaymentStatus = PaymentCompleted
	o.GatewayPaymentID = paymentID
	o.IsPaid = true
	o.PaidAt = &paidAt
	o.UpdatedAt = paidAt
	return o, nil
}
