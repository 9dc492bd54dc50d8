package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sadragit2004/sumsungmarkaz/internal/cart"
	"github.com/Sadragit2004/sumsungmarkaz/internal/catalog"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
)

// Creator persists a fully built order atomically.
type Creator interface {
	CreateOrderTx(ctx context.Context, o *Order) error
}

// CreateOptions carries the checkout form fields that end up on the order.
type CreateOptions struct {
	Description string
	Discount    int
}

// Builder drains a session cart into a persisted order. Line prices freeze
// here: each line is re-resolved against the catalog at creation time and
// the price captured then is the one invoiced.
type Builder struct {
	Orders  Creator
	Catalog catalog.Lookup
	Carts   cart.Store
	Log     *zap.Logger
}

// CreateOrder converts the session's cart into a pending order.
//
// Lines whose product no longer resolves are skipped, not fatal: a vanished
// product must not block the rest of a legitimate order. Their ids come
// back in skipped. The cart is cleared only after the order committed; on
// any failure before that the cart is untouched so the customer can retry.
func (b *Builder) CreateOrder(ctx context.Context, customerID, sessionID string, opts CreateOptions) (*Order, []string, error) {
	if opts.Discount < 0 || opts.Discount > 100 {
		return nil, nil, ErrInvalidDiscount
	}

	c, err := b.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if c.Count() == 0 {
		return nil, nil, ErrEmptyCart
	}

	o := &Order{
		ID:          uuid.NewString(),
		OrderCode:   uuid.NewString(),
		CustomerID:  customerID,
		Status:      StatusPending,
		Description: opts.Description,
		Discount:    opts.Discount,
	}

	var skipped []string
	for _, l := range c.Lines() {
		p, err := b.Catalog.Product(ctx, l.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			skipped = append(skipped, l.ProductID)
			b.Log.Warn("order line skipped, product vanished",
				zap.String("order_code", o.OrderCode),
				zap.String("product_id", l.ProductID))
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("resolve line %s: %w", l.ProductID, err)
		}
		o.Details = append(o.Details, Detail{
			ProductID:       p.ID,
			BrandID:         p.BrandID,
			Qty:             l.Quantity,
			PriceCents:      p.PriceCents,
			SelectedOptions: l.Options,
		})
	}

	if err := b.Orders.CreateOrderTx(ctx, o); err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed; a failed clear only leaves a stale cart behind.
	if err := b.Carts.Delete(ctx, sessionID); err != nil {
		b.Log.Error("clear cart after order", zap.String("order_code", o.OrderCode), zap.Error(err))
	}
	return o, skipped, nil
}
