package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/lumiere-skincare/storefront-api/internal/domain/product"
)

var (
	// ErrNotFound is returned when the user has no cart document.
	ErrNotFound = errors.New("cart not found")

	// ErrItemNotFound is returned when the cart exists but the referenced
	// line item does not.
	ErrItemNotFound = errors.New("cart item not found")
)

// Item is a single (product, quantity) line as stored. At most one line
// exists per (cart, product) pair.
type Item struct {
	ID        string
	ProductID string
	Quantity  int
}

// ResolvedItem pairs a cart line with its catalog product for display.
type ResolvedItem struct {
	ID       string
	Product  product.Product
	Quantity int
}

// Cart is the mutable per-user collection of line items. It is created
// lazily on first access and cleared, not deleted, at checkout.
type Cart struct {
	UserID    string
	Items     []ResolvedItem
	UpdatedAt time.Time
}

// Repository defines persistence operations for carts.
type Repository interface {
	// Get returns the user's cart with product details resolved, or
	// ErrNotFound when the user has no cart yet.
	Get(ctx context.Context, userID string) (*Cart, error)

	// Create inserts an empty cart for the user. Creating an already
	// existing cart is a no-op.
	Create(ctx context.Context, userID string) error

	// Exists reports whether the user has a cart.
	Exists(ctx context.Context, userID string) (bool, error)

	// UpsertItem appends the line, or adds its quantity to the existing line
	// for the same product. item.ID is only used when a new line is inserted.
	UpsertItem(ctx context.Context, userID string, item Item) error

	// SetItemQuantity replaces the quantity of an existing line.
	// Returns ErrItemNotFound when the line does not exist.
	SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) error

	// DeleteItem removes a line. Returns ErrItemNotFound when absent.
	DeleteItem(ctx context.Context, userID, itemID string) error

	// Clear removes every line, keeping the cart itself.
	Clear(ctx context.Context, userID string) error
}
