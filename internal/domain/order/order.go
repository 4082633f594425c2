package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the referenced order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrForbidden is returned when the order exists but belongs to another
	// user. The existence check always runs first.
	ErrForbidden = errors.New("not authorized")

	// ErrEmptyCart is returned on checkout from an empty or absent cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// PaymentStatus tracks payment reconciliation for an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// LineItem is a denormalized copy of a product taken at checkout time.
// Once written it is never re-synced with the catalog: the order must
// reflect what the customer saw and paid for, even if the product is later
// renamed, re-priced, or deleted.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// Address is the shipping destination. All fields are required.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Complete reports whether every address field is set.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.ZipCode != "" && a.Country != ""
}

// Order is the immutable checkout snapshot. Totals are computed once at
// creation (Total = Subtotal + Shipping) and never recalculated; only the
// payment fields and the delivery fields change afterwards.
type Order struct {
	ID              string
	UserID          string
	Items           []LineItem
	ShippingAddress Address
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Total           decimal.Decimal

	PaymentMethod string
	PaymentStatus PaymentStatus
	// PaymentRef is a client-supplied payment intent reference, when the
	// intent was opened outside this service.
	PaymentRef string
	// GatewayOrderID is the gateway-issued intent identifier opened at
	// checkout; the payment signature is bound to it.
	GatewayOrderID   string
	GatewayPaymentID string

	IsPaid      bool
	PaidAt      *time.Time
	IsDelivered bool
	DeliveredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateAndClearCart persists the order and empties the originating
	// user's cart in a single transaction.
	CreateAndClearCart(ctx context.Context, o *Order) error

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)

	// GetByID returns an order regardless of owner, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)

	// MarkPaid records a verified payment: status completed, gateway payment
	// id stored, paid flag and timestamp set. Returns ErrNotFound when the
	// order does not exist.
	MarkPaid(ctx context.Context, id, gatewayPaymentID string, paidAt time.Time) error
}
