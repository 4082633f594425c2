package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumiere-skincare/storefront-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (
			id, user_id, items, shipping_address, subtotal, shipping, total,
			payment_method, payment_status, payment_ref, gateway_order_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	selectOrderSQL = `SELECT id, user_id, items, shipping_address, subtotal, shipping, total,
			payment_method, payment_status, payment_ref, gateway_order_id, gateway_payment_id,
			is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at
		FROM orders`

	listOrdersByUserSQL = selectOrderSQL + ` WHERE user_id = $1 ORDER BY created_at DESC`

	getOrderByIDSQL = selectOrderSQL + ` WHERE id = $1`

	markOrderPaidSQL = `UPDATE orders
		SET payment_status = 'completed', gateway_payment_id = $2,
			is_paid = TRUE, paid_at = $3, updated_at = $3
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items and the shipping address are serialized to JSONB, keeping the order
// a self-contained snapshot independent of later catalog changes.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateAndClearCart persists the order and empties the user's cart in one
// transaction, so a failed insert never loses the cart and a failed clear
// never leaves a phantom order.
func (r *OrderRepository) CreateAndClearCart(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, itemsJSON, addressJSON,
		o.Subtotal, o.Shipping, o.Total,
		o.PaymentMethod, string(o.PaymentStatus), o.PaymentRef, o.GatewayOrderID,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if _, err := tx.Exec(ctx, clearCartItemsSQL, o.UserID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", o.UserID, err)
	}
	if _, err := tx.Exec(ctx, touchCartSQL, o.UserID); err != nil {
		return fmt.Errorf("touching cart: %w", err)
	}

	return tx.Commit(ctx)
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns an order by identifier, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// MarkPaid records a verified payment against an order.
func (r *OrderRepository) MarkPaid(ctx context.Context, id, gatewayPaymentID string, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx, markOrderPaidSQL, id, gatewayPaymentID, paidAt)
	if err != nil {
		return fmt.Errorf("marking order %q paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o                         order.Order
		itemsJSON, addressJSON    []byte
		subtotal, shipping, total decimal.Decimal
		paymentStatus             string
		gatewayPaymentID, payRef  *string
		gatewayOrderID            *string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &itemsJSON, &addressJSON, &subtotal, &shipping, &total,
		&o.PaymentMethod, &paymentStatus, &payRef, &gatewayOrderID, &gatewayPaymentID,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}

	o.Subtotal = subtotal
	o.Shipping = shipping
	o.Total = total
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	if payRef != nil {
		o.PaymentRef = *payRef
	}
	if gatewayOrderID != nil {
		o.GatewayOrderID = *gatewayOrderID
	}
	if gatewayPaymentID != nil {
		o.GatewayPaymentID = *gatewayPaymentID
	}
	return o, nil
}
