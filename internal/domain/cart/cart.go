package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is a read view over a user's cart rows
type Cart struct {
	UserID uuid.UUID
	Items  []Item
}

// NewCart wraps the rows of one user
func NewCart(userID uuid.UUID, items []Item) *Cart {
	if items == nil {
		items = []Item{}
	}
	return &Cart{UserID: userID, Items: items}
}

// Total sums all line subtotals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Subtotal())
	}
	return total
}

// ItemCount sums quantities across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
