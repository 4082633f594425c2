package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/lumiere-skincare/storefront-api/internal/domain/product"
)

// Service implements the cart operations, all scoped to a single user.
type Service struct {
	products product.Repository
	carts    Repository
	locks    *userLocks
}

// NewService creates a cart Service with the required dependencies.
func NewService(products product.Repository, carts Repository) *Service {
	return &Service{
		products: products,
		carts:    carts,
		locks:    newUserLocks(),
	}
}

// Get returns the user's cart, creating an empty one when absent. Fetching
// never fails with a not-found error.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		if err := s.carts.Create(ctx, userID); err != nil {
			return nil, errors.Wrap(err, "create cart")
		}
		return &Cart{UserID: userID, Items: []ResolvedItem{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// AddItem puts quantity units of a product into the cart. Adding a product
// already present increments the existing line instead of duplicating it.
// Quantities below one are raised to one.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, errors.Wrap(err, "resolve product")
	}

	release := s.locks.lock(userID)
	defer release()

	if err := s.carts.Create(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "create cart")
	}

	item := Item{
		ID:        uuid.New().String(),
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.carts.UpsertItem(ctx, userID, item); err != nil {
		return nil, errors.Wrap(err, "upsert item")
	}

	return s.carts.Get(ctx, userID)
}

// UpdateItem sets the quantity of an existing line. Requests for zero or
// negative quantities are clamped to one, never treated as removal.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	release := s.locks.lock(userID)
	defer release()

	if err := s.requireCart(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.carts.SetItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}

	return s.carts.Get(ctx, userID)
}

// RemoveItem deletes a single line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*Cart, error) {
	release := s.locks.lock(userID)
	defer release()

	if err := s.requireCart(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(ctx, userID, itemID); err != nil {
		return nil, err
	}

	return s.carts.Get(ctx, userID)
}

// Clear empties the cart. It is idempotent, but still fails with ErrNotFound
// when the cart itself was never created.
func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	release := s.locks.lock(userID)
	defer release()

	if err := s.requireCart(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	return s.carts.Get(ctx, userID)
}

func (s *Service) requireCart(ctx context.Context, userID string) error {
	ok, err := s.carts.Exists(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "check cart")
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
