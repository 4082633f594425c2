package handler

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the storefront's business counters.
type Metrics struct {
	ordersPlaced     metric.Int64Counter
	paymentsVerified metric.Int64Counter
}

// NewMetrics registers the storefront counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	ordersPlaced, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders created through checkout"))
	if err != nil {
		return nil, err
	}
	paymentsVerified, err := meter.Int64Counter("storefront.payments.verified",
		metric.WithDescription("Payment verification attempts"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		ordersPlaced:     ordersPlaced,
		paymentsVerified: paymentsVerified,
	}, nil
}

func (m *Metrics) orderPlaced(ctx context.Context, paymentMethod string) {
	if m == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("payment.method", paymentMethod),
	))
}

func (m *Metrics) paymentVerified(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.paymentsVerified.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("verified", ok),
	))
}
