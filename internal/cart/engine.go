package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/catalog"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("line not in cart")
)

// Store persists carts keyed by session id. Get on an unknown session must
// return a fresh empty cart, not an error. Concurrent writers to the same
// session are last-write-wins; the store adds no optimistic checks.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Put(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// SnapshotLine is one cart line joined against the catalog at read time.
// Unresolved lines carry a zero price and Resolved=false instead of failing
// the snapshot: stale sessions may reference deleted products.
type SnapshotLine struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Options   string `json:"detail,omitempty"`
	UnitPrice int    `json:"unit_price"`
	LineTotal int    `json:"line_total"`
	Resolved  bool   `json:"resolved"`
}

// Engine owns all cart mutations for a session. Every mutating operation
// writes the cart back through the Store before returning.
type Engine struct {
	Store   Store
	Catalog catalog.Lookup
	Log     *zap.Logger
}

// Add validates the product against the catalog before touching the cart,
// so a failed lookup leaves no partial state behind.
func (e *Engine) Add(ctx context.Context, sessionID, productID string, qty int, options string) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if _, err := e.Catalog.Product(ctx, productID); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}

	c, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	c.Add(productID, qty, options)
	return e.Store.Put(ctx, sessionID, c)
}

// Remove deletes the line if present; removing an absent line is not an error.
func (e *Engine) Remove(ctx context.Context, sessionID, productID, options string) error {
	c, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	c.Remove(LineKey{ProductID: productID, Options: options})
	return e.Store.Put(ctx, sessionID, c)
}

// UpdateQuantity overwrites the line's quantity, last write wins. qty <= 0
// removes the line. The line must already exist.
func (e *Engine) UpdateQuantity(ctx context.Context, sessionID, productID string, qty int, options string) error {
	c, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !c.SetQuantity(LineKey{ProductID: productID, Options: options}, qty) {
		return ErrLineNotFound
	}
	return e.Store.Put(ctx, sessionID, c)
}

// Clear empties the session's cart; clearing an empty cart is a no-op.
func (e *Engine) Clear(ctx context.Context, sessionID string) error {
	return e.Store.Delete(ctx, sessionID)
}

// Snapshot joins every stored line against a fresh catalog lookup.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) ([]SnapshotLine, error) {
	c, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.snapshot(ctx, c)
}

func (e *Engine) snapshot(ctx context.Context, c *Cart) ([]SnapshotLine, error) {
	lines := c.Lines()
	out := make([]SnapshotLine, 0, len(lines))
	for _, l := range lines {
		s := SnapshotLine{ProductID: l.ProductID, Quantity: l.Quantity, Options: l.Options}
		p, err := e.Catalog.Product(ctx, l.ProductID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			e.Log.Warn("cart line no longer resolves", zap.String("product_id", l.ProductID))
		case err != nil:
			return nil, err
		default:
			s.Title = p.Title
			s.UnitPrice = p.PriceCents
			s.LineTotal = p.PriceCents * l.Quantity
			s.Resolved = true
		}
		out = append(out, s)
	}
	return out, nil
}

// Count returns the summed quantity across lines.
func (e *Engine) Count(ctx context.Context, sessionID string) (int, error) {
	c, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// TotalPrice sums quantity times current catalog price over the snapshot,
// skipping unresolved lines.
func (e *Engine) TotalPrice(ctx context.Context, sessionID string) (int, error) {
	snap, err := e.Snapshot(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, s := range snap {
		if s.Resolved {
			total += s.LineTotal
		}
	}
	return total, nil
}

// Summary bundles the response shape every cart endpoint returns.
type Summary struct {
	Count      int            `json:"cart_count"`
	TotalPrice int            `json:"total_price"`
	Items      []SnapshotLine `json:"items"`
}

// Summarize reads the cart once and derives count, total and items from a
// single snapshot.
func (e *Engine) Summarize(ctx context.Context, sessionID string) (Summary, error) {
	c, err := e.Store.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	snap, err := e.snapshot(ctx, c)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Count: c.Count(), Items: snap}
	for _, s := range snap {
		if s.Resolved {
			sum.TotalPrice += s.LineTotal
		}
	}
	return sum, nil
}
