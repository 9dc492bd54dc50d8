// Package checkout computes the payable amount for an order. All arithmetic
// is integer-only; each step floors. Tax is computed on the discounted
// total, not the pre-discount one.
package checkout

import "github.com/Sadragit2004/sumsungmarkaz/internal/orders"

// DefaultTaxRatePercent is the flat surcharge applied at checkout.
const DefaultTaxRatePercent = 9

type Summary struct {
	TotalCents   int `json:"total_cents"`   // before discount
	FinalCents   int `json:"final_cents"`   // after discount
	TaxCents     int `json:"tax_cents"`     // ratePercent of FinalCents
	PayableCents int `json:"payable_cents"` // FinalCents + TaxCents
}

func TaxAmount(o *orders.Order, ratePercent int) int {
	return o.FinalPrice() * ratePercent / 100
}

func Payable(o *orders.Order, ratePercent int) int {
	return o.FinalPrice() + TaxAmount(o, ratePercent)
}

func Summarize(o *orders.Order, ratePercent int) Summary {
	final := o.FinalPrice()
	tax := final * ratePercent / 100
	return Summary{
		TotalCents:   o.TotalPrice(),
		FinalCents:   final,
		TaxCents:     tax,
		PayableCents: final + tax,
	}
}
