package orders

import "time"

// Order is the aggregate root for a purchase. Once created it is immutable
// from the cart subsystem's point of view; only status moves afterwards.
type Order struct {
	ID          string
	OrderCode   string // opaque code shown to the customer
	CustomerID  string
	Status      Status
	Description string
	Discount    int // invoice-level discount percentage, 0..100
	IsFinal     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Details     []Detail
}

// Detail is one priced line frozen into an order. PriceCents is captured at
// order creation and never changes with the catalog afterwards.
type Detail struct {
	ID              int64
	OrderID         string
	ProductID       string
	BrandID         *string
	Qty             int
	PriceCents      int
	SelectedOptions string
}

func (d Detail) TotalPrice() int { return d.Qty * d.PriceCents }

// TotalPrice is the order sum before discount.
func (o *Order) TotalPrice() int {
	total := 0
	for _, d := range o.Details {
		total += d.TotalPrice()
	}
	return total
}

// FinalPrice applies the invoice discount with floor division.
func (o *Order) FinalPrice() int {
	total := o.TotalPrice()
	if o.Discount > 0 {
		total -= total * o.Discount / 100
	}
	return total
}
