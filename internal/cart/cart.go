// Package cart holds the in-memory shopping cart for one session. A
// cart is a plain owned object: handlers receive a handle from the
// Registry, nothing reads it through package globals.
package cart

import (
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/pkg/errors"
)

var ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")

// LineItem copies the product fields at add time plus a quantity.
// Later catalog edits do not touch existing lines.
type LineItem struct {
	ProductID     int64    `json:"product_id,string"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Category      string   `json:"category"`
	Stock         int      `json:"stock"`
	OnSale        bool     `json:"on_sale"`
	ImageURL      string   `json:"image_url"`
	Quantity      int      `json:"quantity"`
}

// Cart keeps line items in first-add order. At most one line exists per
// product id; quantity updates never re-sort.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// Add merges the quantity into an existing line for the product, or
// appends a new line snapshotted from the product. A non-positive
// quantity is rejected and the cart is left untouched.
func (c *Cart) Add(p domain.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity += quantity
			return nil
		}
	}
	c.items = append(c.items, LineItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Category:      p.Category,
		Stock:         p.Stock,
		OnSale:        p.OnSale,
		ImageURL:      p.ImageURL,
		Quantity:      quantity,
	})
	return nil
}

// Remove drops the line for productID. Absent ids are a no-op.
func (c *Cart) Remove(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity exactly. Zero or negative removes the
// line; unknown ids are a no-op.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.items = nil
}

// Total recomputes the sum of price*quantity on every call. Shipping
// and tax are layered on at checkout, not here.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Items returns a copy in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

// OrderItems converts the current lines into order snapshot items for
// checkout.
func (c *Cart) OrderItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(c.items))
	for _, line := range c.items {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}
