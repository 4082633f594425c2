package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Categories is the fixed set of catalog categories.
var Categories = []string{
	"Serums",
	"Moisturizers",
	"Cleansers",
	"Treatments",
	"Eye Care",
	"Masks",
}

// Product represents a catalog item available for purchase. The catalog is
// read-only from the API's point of view; writes happen through the seeder.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       decimal.Decimal
	Image       string
	Description string
	Badge       string
	Stock       int
	InStock     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
