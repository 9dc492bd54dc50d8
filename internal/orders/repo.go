package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx persists the order and all its details in one transaction.
// If anything fails before commit, no order or detail rows remain.
func (r *Repo) CreateOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, order_code, customer_id, status, description, discount, is_final)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		o.ID, o.OrderCode, o.CustomerID, string(o.Status), o.Description, o.Discount, o.IsFinal,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range o.Details {
		d := &o.Details[i]
		d.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_details(order_id, product_id, brand_id, qty, price_cents, selected_options)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			d.OrderID, d.ProductID, d.BrandID, d.Qty, d.PriceCents, d.SelectedOptions,
		).Scan(&d.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByCode loads an order and its details by the customer-facing code.
func (r *Repo) GetByCode(ctx context.Context, code string) (*Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, order_code, customer_id, status, COALESCE(description, ''),
		       discount, is_final, created_at, updated_at
		FROM orders WHERE order_code = $1`, code,
	).Scan(&o.ID, &o.OrderCode, &o.CustomerID, &status, &o.Description,
		&o.Discount, &o.IsFinal, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, brand_id, qty, price_cents, COALESCE(selected_options, '')
		FROM order_details WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.BrandID, &d.Qty, &d.PriceCents, &d.SelectedOptions); err != nil {
			return nil, err
		}
		o.Details = append(o.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves the order through the status machine. The current row
// is locked so concurrent updaters serialize on the transition check.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !CanTransition(Status(cur), to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, string(to)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
