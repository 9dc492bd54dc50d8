// Package cart holds the session-scoped shopping cart: a keyed set of
// product lines with live pricing against the catalog. Prices are never
// stored here; they freeze only when an order is created.
package cart

import (
	"encoding/json"
	"sort"
)

// LineKey identifies one distinct purchasable selection. Two adds with the
// same product and the same option descriptor merge into one line.
type LineKey struct {
	ProductID string `json:"product_id"`
	Options   string `json:"options"` // empty means no options selected
}

// Line is one cart entry. Quantity is always >= 1; anything that would push
// it to zero or below removes the line instead.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Options   string `json:"options,omitempty"`
}

func (l Line) Key() LineKey { return LineKey{ProductID: l.ProductID, Options: l.Options} }

// Cart maps line keys to lines for one session. The zero value is not
// usable; call New.
type Cart struct {
	lines map[LineKey]Line
}

func New() *Cart {
	return &Cart{lines: make(map[LineKey]Line)}
}

// Add merges qty into an existing line with the same key, or inserts a new
// one. The caller validates qty >= 1 and resolves the product first.
func (c *Cart) Add(productID string, qty int, options string) {
	k := LineKey{ProductID: productID, Options: options}
	l, ok := c.lines[k]
	if !ok {
		c.lines[k] = Line{ProductID: productID, Quantity: qty, Options: options}
		return
	}
	l.Quantity += qty
	c.lines[k] = l
}

// Remove deletes the line for key; removing an absent line is a no-op.
func (c *Cart) Remove(k LineKey) {
	delete(c.lines, k)
}

// SetQuantity overwrites the line's quantity. qty <= 0 removes the line.
// Returns false if no line exists for key.
func (c *Cart) SetQuantity(k LineKey, qty int) bool {
	l, ok := c.lines[k]
	if !ok {
		return false
	}
	if qty <= 0 {
		delete(c.lines, k)
		return true
	}
	l.Quantity = qty
	c.lines[k] = l
	return true
}

func (c *Cart) Clear() {
	c.lines = make(map[LineKey]Line)
}

// Count is the sum of quantities across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Len is the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// Lines returns the cart's lines in a stable order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Options < out[j].Options
	})
	return out
}

// The wire form is a flat list of lines; the key map is rebuilt on load.

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

func (c *Cart) UnmarshalJSON(b []byte) error {
	var lines []Line
	if err := json.Unmarshal(b, &lines); err != nil {
		return err
	}
	c.lines = make(map[LineKey]Line, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		c.Add(l.ProductID, l.Quantity, l.Options)
	}
	return nil
}
