// Package cart implements the client-side cart model: a single-owner,
// session-scoped line collection keyed by product id. Lines hold
// add-time snapshots of product fields, so later catalog edits never
// change what the customer already put in the cart.
package cart

import (
	"encoding/json"

	"storefront-service/internal/models"
)

// Line is one cart entry. The name, price and image are copies captured
// when the product was added.
type Line struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Cart holds the session's lines in insertion order
type Cart struct {
	lines []Line
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// Add captures a snapshot of p and appends it with quantity 1. Adding a
// product already in the cart increments that line's quantity instead.
func (c *Cart) Add(p *models.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
	})
}

// SetQuantity sets the quantity for a product's line. A quantity of zero
// or less removes the line. Returns false if no line exists for the id.
func (c *Cart) SetQuantity(productID int64, quantity int) bool {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			if quantity <= 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// Remove deletes a product's line. Returns false if no line exists.
func (c *Cart) Remove(productID int64) bool {
	return c.SetQuantity(productID, 0)
}

// Items returns a copy of the cart lines
func (c *Cart) Items() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total returns the sum of price * quantity over all lines
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// Count returns the total quantity across all lines
func (c *Cart) Count() int {
	var count int
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// OrderItems converts the cart lines to order line snapshots for checkout
func (c *Cart) OrderItems() models.OrderItems {
	items := make(models.OrderItems, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// MarshalJSON round-trips the cart as a plain line array, matching the
// storage format browsers kept in localStorage
func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.lines)
}

// UnmarshalJSON restores a cart from a line array, dropping lines with
// non-positive quantities
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = c.lines[:0]
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
	return nil
}
