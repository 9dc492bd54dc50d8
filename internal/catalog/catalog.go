// Package catalog resolves products against the read-only product catalog.
// The cart and order subsystems never write through it.
package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID         string
	SKU        string
	Title      string
	BrandID    *string
	BrandName  string
	PriceCents int
	Active     bool
}

// Lookup resolves a product id to its current catalog record. Implementations
// return ErrNotFound for ids that do not resolve (deleted or inactive) and
// must answer within a bounded time rather than block.
type Lookup interface {
	Product(ctx context.Context, id string) (Product, error)
}
