package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG looks products up in the catalog tables. Inactive products are treated
// the same as missing ones: not purchasable.
type PG struct{ DB *pgxpool.Pool }

const lookupTimeout = 2 * time.Second

func (c *PG) Product(ctx context.Context, id string) (Product, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	var p Product
	err := c.DB.QueryRow(ctx, `
		SELECT p.id, p.sku, p.title, p.brand_id, COALESCE(b.name, ''), p.price_cents, p.active
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE p.id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Title, &p.BrandID, &p.BrandName, &p.PriceCents, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	if !p.Active {
		return Product{}, ErrNotFound
	}
	return p, nil
}
