// Package gateway adapts external payment providers to the payment.Gateway
// interface.
package gateway

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/lumiere-skincare/storefront-api/internal/domain/payment"
)

var _ payment.Gateway = (*Razorpay)(nil)

// Razorpay opens payment intents through the Razorpay Orders API.
type Razorpay struct {
	client *razorpay.Client
}

// NewRazorpay creates a Razorpay gateway from API credentials.
func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret)}
}

// OpenIntent creates a Razorpay order for the given amount and returns its
// identifier. Razorpay bills in the smallest currency unit, so the decimal
// amount is converted to paise before the call.
func (g *Razorpay) OpenIntent(_ context.Context, amount decimal.Decimal, currency, receipt string) (string, error) {
	if !amount.IsPositive() {
		return "", payment.ErrInvalidAmount
	}

	data := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", errors.Wrap(err, "creating razorpay order")
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay order response missing id")
	}
	return id, nil
}
