package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumiere-skincare/storefront-api/internal/domain/cart"
	"github.com/lumiere-skincare/storefront-api/internal/domain/payment"
	"github.com/lumiere-skincare/storefront-api/internal/domain/product"
)

// --- Mock implementations ---

type mockCartReader struct {
	cart *cart.Cart
	err  error
}

func (m *mockCartReader) Get(_ context.Context, _ string) (*cart.Cart, error) {
	return m.cart, m.err
}

type mockOrderRepo struct {
	lastOrder *Order
	byID      map[string]*Order
	listed    []Order
	markPaid  bool
	createErr error
}

func (m *mockOrderRepo) CreateAndClearCart(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]Order, error) {
	return m.listed, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id, _ string, _ time.Time) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	m.markPaid = true
	return nil
}

type mockGateway struct {
	gotAmount   decimal.Decimal
	gotCurrency string
	gotReceipt  string
	err         error
}

func (m *mockGateway) OpenIntent(_ context.Context, amount decimal.Decimal, currency, receipt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.gotAmount = amount
	m.gotCurrency = currency
	m.gotReceipt = receipt
	return "rzp_order_test", nil
}

// --- Helpers ---

var testRule = ShippingRule{
	FreeThreshold: decimal.NewFromInt(150),
	FlatFee:       decimal.NewFromInt(15),
}

var testAddress = Address{
	Street:  "12 Rue des Lilas",
	City:    "Lyon",
	State:   "Rhône",
	ZipCode: "69003",
	Country: "France",
}

func cartOf(lines ...cart.ResolvedItem) *cart.Cart {
	return &cart.Cart{UserID: "u1", Items: lines}
}

func line(id, name, price string, qty int) cart.ResolvedItem {
	return cart.ResolvedItem{
		ID: "item-" + id,
		Product: product.Product{
			ID:    id,
			Name:  name,
			Price: decimal.RequireFromString(price),
			Image: "/assets/" + id + ".jpg",
		},
		Quantity: qty,
	}
}

// --- Tests ---

func TestShippingRule_Fee(t *testing.T) {
	tests := []struct {
		subtotal string
		want     string
	}{
		{"0", "15"},
		{"149.99", "15"},
		{"150.00", "15"}, // boundary is strictly greater-than
		{"150.01", "0"},
		{"500", "0"},
	}
	for _, tt := range tests {
		fee := testRule.Fee(decimal.RequireFromString(tt.subtotal))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(fee),
			"subtotal %s: got fee %s, want %s", tt.subtotal, fee, tt.want)
	}
}

func TestCheckout_TotalsAndSnapshot(t *testing.T) {
	carts := &mockCartReader{cart: cartOf(
		line("p1", "Luminous Glow Serum", "100.00", 1),
		line("p2", "Rose Petal Cleanser", "60.00", 1),
	)}
	repo := &mockOrderRepo{}
	svc := NewService(carts, repo, nil, payment.NewVerifier([]byte("s")), testRule)

	o, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("160.00").Equal(o.Subtotal))
	assert.True(t, decimal.Zero.Equal(o.Shipping))
	assert.True(t, decimal.RequireFromString("160.00").Equal(o.Total))
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.Shipping)))
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, "u1", o.UserID)
	require.NotNil(t, repo.lastOrder, "order must be persisted")

	// Line items carry checkout-time copies, not references.
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Luminous Glow Serum", o.Items[0].Name)
	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Items[0].Price))
	assert.Equal(t, "/assets/p1.jpg", o.Items[0].Image)
}

func TestCheckout_FlatShippingBelowThreshold(t *testing.T) {
	carts := &mockCartReader{cart: cartOf(line("p1", "Serum", "150.00", 1))}
	repo := &mockOrderRepo{}
	svc := NewService(carts, repo, nil, payment.NewVerifier([]byte("s")), testRule)

	o, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(15).Equal(o.Shipping))
	assert.True(t, decimal.RequireFromString("165.00").Equal(o.Total))
}

func TestCheckout_EmptyCart(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := NewService(&mockCartReader{cart: cartOf()}, repo, nil, payment.NewVerifier([]byte("s")), testRule)

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress})
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, repo.lastOrder, "no order record may be created")
}

func TestCheckout_MissingCart(t *testing.T) {
	svc := NewService(&mockCartReader{err: cart.ErrNotFound}, &mockOrderRepo{}, nil, payment.NewVerifier([]byte("s")), testRule)

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_OpenIntent(t *testing.T) {
	carts := &mockCartReader{cart: cartOf(line("p1", "Serum", "200.00", 1))}
	gw := &mockGateway{}
	repo := &mockOrderRepo{}
	svc := NewService(carts, repo, gw, payment.NewVerifier([]byte("s")), testRule)

	o, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress, OpenIntent: true})
	require.NoError(t, err)

	assert.Equal(t, "rzp_order_test", o.GatewayOrderID)
	assert.Equal(t, "razorpay", o.PaymentMethod)
	assert.Equal(t, "INR", gw.gotCurrency)
	assert.True(t, decimal.RequireFromString("200.00").Equal(gw.gotAmount),
		"charged amount must be the server-derived total, got %s", gw.gotAmount)
	assert.Contains(t, gw.gotReceipt, "order_u1_")
}

func TestCheckout_OpenIntent_GatewayUnconfigured(t *testing.T) {
	carts := &mockCartReader{cart: cartOf(line("p1", "Serum", "200.00", 1))}
	repo := &mockOrderRepo{}
	svc := NewService(carts, repo, nil, payment.NewVerifier([]byte("s")), testRule)

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress, OpenIntent: true})
	require.ErrorIs(t, err, payment.ErrUnavailable)
	assert.Nil(t, repo.lastOrder)
}

func TestCheckout_GatewayError(t *testing.T) {
	carts := &mockCartReader{cart: cartOf(line("p1", "Serum", "200.00", 1))}
	gw := &mockGateway{err: errors.New("gateway down")}
	repo := &mockOrderRepo{}
	svc := NewService(carts, repo, gw, payment.NewVerifier([]byte("s")), testRule)

	_, err := svc.Checkout(context.Background(), "u1", CheckoutInput{Address: testAddress, OpenIntent: true})
	require.Error(t, err)
	assert.Nil(t, repo.lastOrder, "order must not be persisted when the intent fails")
}

func TestGet_Ownership(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "alice"},
	}}
	svc := NewService(&mockCartReader{}, repo, nil, payment.NewVerifier([]byte("s")), testRule)

	o, err := svc.Get(context.Background(), "alice", "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = svc.Get(context.Background(), "bob", "o1")
	require.ErrorIs(t, err, ErrForbidden, "existing order owned by another user")

	_, err = svc.Get(context.Background(), "alice", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPayment(t *testing.T) {
	verifier := payment.NewVerifier([]byte("gateway-secret"))
	repo := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "u1", GatewayOrderID: "rzp_order_1", PaymentStatus: PaymentPending},
	}}
	svc := NewService(&mockCartReader{}, repo, nil, verifier, testRule)

	sig := verifier.Sign("rzp_order_1", "pay_9")
	o, err := svc.ConfirmPayment(context.Background(), "o1", "pay_9", sig)
	require.NoError(t, err)

	assert.Equal(t, PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, "pay_9", o.GatewayPaymentID)
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.True(t, repo.markPaid)
}

func TestConfirmPayment_SignatureMismatch(t *testing.T) {
	verifier := payment.NewVerifier([]byte("gateway-secret"))
	repo := &mockOrderRepo{byID: map[string]*Order{
		"o1": {ID: "o1", UserID: "u1", GatewayOrderID: "rzp_order_1", PaymentStatus: PaymentPending},
	}}
	svc := NewService(&mockCartReader{}, repo, nil, verifier, testRule)

	forged := verifier.Sign("rzp_order_1", "some-other-payment")
	_, err := svc.ConfirmPayment(context.Background(), "o1", "pay_9", forged)
	require.ErrorIs(t, err, payment.ErrSignatureMismatch)

	assert.False(t, repo.markPaid, "order payment status must stay untouched")
	assert.Equal(t, PaymentPending, repo.byID["o1"].PaymentStatus)
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	verifier := payment.NewVerifier([]byte("gateway-secret"))
	svc := NewService(&mockCartReader{}, &mockOrderRepo{byID: map[string]*Order{}}, nil, verifier, testRule)

	_, err := svc.ConfirmPayment(context.Background(), "ghost", "pay_9", "sig")
	require.ErrorIs(t, err, ErrNotFound)
}
