// Package cart holds the in-progress sale for a single terminal. A Cart
// is an ephemeral single-owner value: it is never persisted and is
// discarded after a successful checkout or when the session ends.
package cart

import "github.com/shopspring/decimal"

// Line is a product snapshot plus quantity. Price is captured when the
// product is first added, so catalog edits do not move an open sale.
type Line struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart keeps at most one line per product id, in insertion order.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity for the product if a line already exists,
// otherwise appends a new line with quantity 1.
func (c *Cart) Add(productID, name string, price decimal.Decimal) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  1,
	})
}

// Adjust adds delta to the line's quantity, clamping at zero. A line
// whose quantity reaches zero is removed, never kept empty. Unknown
// product ids are ignored.
func (c *Cart) Adjust(productID string, delta int) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		q := c.lines[i].Quantity + delta
		if q <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = q
		}
		return
	}
}

// Remove drops the line unconditionally.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy; callers cannot reach the cart's own slice.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Clone returns an independent copy of the cart. Checkout works on a
// clone so the live cart is only cleared after the commit succeeds.
func (c *Cart) Clone() *Cart {
	return &Cart{lines: c.Lines()}
}
