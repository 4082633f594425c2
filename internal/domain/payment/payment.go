// Package payment holds the contract with the external payment gateway and
// the signature verification that guards payment confirmation.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable is returned when no gateway client was configured.
	ErrUnavailable = errors.New("payment gateway is not configured")

	// ErrInvalidAmount is returned for a declared amount below one currency unit.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSignatureMismatch is returned when the caller-supplied signature does
	// not match the one derived from the stored gateway identifiers. It is a
	// normal unsuccessful result, not a server failure.
	ErrSignatureMismatch = errors.New("payment verification failed")
)

// Gateway opens payment intents with the remote processor. The concrete
// client is constructed once at startup and injected; a nil Gateway means
// payment initiation is unavailable.
type Gateway interface {
	// OpenIntent asks the processor to open a payment intent for the given
	// amount (major currency units) and returns the gateway's order id.
	OpenIntent(ctx context.Context, amount decimal.Decimal, currency, receipt string) (string, error)
}

// Verifier checks gateway payment signatures with the server-held secret.
// The gateway signs the string "<gatewayOrderID>|<paymentID>" with
// HMAC-SHA256 and hex-encodes the result; this is the sole trust boundary
// preventing a client from self-declaring a payment successful.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier around the shared gateway key secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Sign computes the expected hex signature for the given identifiers.
func (v *Verifier) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected one. The comparison
// is constant-time.
func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hmac.Equal(mac.Sum(nil), provided)
}
