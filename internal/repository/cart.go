package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
)

const (
	getCartSQL = `SELECT user_id, updated_at FROM carts WHERE user_id = $1`

	getCartItemsSQL = `SELECT ci.id, ci.quantity,
			p.id, p.name, p.category, p.price, p.image, p.description, p.badge, p.stock, p.in_stock, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`

	createCartSQL = `INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	cartExistsSQL = `SELECT EXISTS (SELECT 1 FROM carts WHERE user_id = $1)`

	upsertCartItemSQL = `INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	setCartItemQuantitySQL = `UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND id = $2`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE user_id = $1 AND id = $2`

	clearCartItemsSQL = `DELETE FROM cart_items WHERE user_id = $1`

	touchCartSQL = `UPDATE carts SET updated_at = now() WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Cart lines
// reference catalog rows; Get resolves them through a join, so lines whose
// product was deleted simply drop out of the view.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart with every line resolved against the catalog,
// or cart.ErrNotFound when no cart row exists.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	c := &cart.Cart{UserID: userID, Items: []cart.ResolvedItem{}}

	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&c.UserID, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}
	c.UpdatedAt = updatedAt

	rows, err := r.pool.Query(ctx, getCartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart items for %q: %w", userID, err)
	}
	items, err := pgx.CollectRows(rows, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("scanning cart items for %q: %w", userID, err)
	}
	if items != nil {
		c.Items = items
	}
	return c, nil
}

// Create inserts an empty cart row. Creating an existing cart is a no-op.
func (r *CartRepository) Create(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, createCartSQL, userID)
	if err != nil {
		return fmt.Errorf("creating cart for %q: %w", userID, err)
	}
	return nil
}

// Exists reports whether a cart row exists for the user.
func (r *CartRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, cartExistsSQL, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking cart for %q: %w", userID, err)
	}
	return exists, nil
}

// UpsertItem adds a line or, when the product already sits in the cart,
// increments the existing line's quantity by the given amount.
func (r *CartRepository) UpsertItem(ctx context.Context, userID string, item cart.Item) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, upsertCartItemSQL, item.ID, userID, item.ProductID, item.Quantity); err != nil {
		return fmt.Errorf("upserting cart item: %w", err)
	}
	if _, err := tx.Exec(ctx, touchCartSQL, userID); err != nil {
		return fmt.Errorf("touching cart: %w", err)
	}
	return tx.Commit(ctx)
}

// SetItemQuantity overwrites a line's quantity, returning cart.ErrItemNotFound
// when the line does not exist.
func (r *CartRepository) SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	tag, err := r.pool.Exec(ctx, setCartItemQuantitySQL, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	_, err = r.pool.Exec(ctx, touchCartSQL, userID)
	return err
}

// DeleteItem removes a line, returning cart.ErrItemNotFound when absent.
func (r *CartRepository) DeleteItem(ctx context.Context, userID, itemID string) error {
	tag, err := r.pool.Exec(ctx, deleteCartItemSQL, userID, itemID)
	if err != nil {
		return fmt.Errorf("deleting cart item %q: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	_, err = r.pool.Exec(ctx, touchCartSQL, userID)
	return err
}

// Clear removes every line from the cart, keeping the cart row itself.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning clear: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, clearCartItemsSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", userID, err)
	}
	if _, err := tx.Exec(ctx, touchCartSQL, userID); err != nil {
		return fmt.Errorf("touching cart: %w", err)
	}
	return tx.Commit(ctx)
}

func scanCartItem(row pgx.CollectableRow) (cart.ResolvedItem, error) {
	var (
		it    cart.ResolvedItem
		price decimal.Decimal
	)
	err := row.Scan(
		&it.ID, &it.Quantity,
		&it.Product.ID, &it.Product.Name, &it.Product.Category, &price, &it.Product.Image,
		&it.Product.Description, &it.Product.Badge, &it.Product.Stock, &it.Product.InStock,
		&it.Product.CreatedAt, &it.Product.UpdatedAt,
	)
	it.Product.Price = price
	return it, err
}
