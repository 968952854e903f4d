package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chiclet/backend/internal/domain/cart"
)

// AddItemRequest adds a product line to the caller's cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Color     string    `json:"color" binding:"max=50"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// UpdateQuantityRequest sets a line quantity; zero removes the line
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

// ItemResponse is one cart line
type ItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ImageURL  string          `json:"image_url,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartResponse is the caller's cart with derived totals
type CartResponse struct {
	Items     []ItemResponse  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// ToCartResponse converts a cart view
func ToCartResponse(c *cart.Cart) CartResponse {
	items := make([]ItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, ToItemResponse(&c.Items[i]))
	}
	return CartResponse{
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

// ToItemResponse converts a single cart line
func ToItemResponse(item *cart.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Color:     item.Color,
		Quantity:  item.Quantity,
		Price:     item.Price,
		Subtotal:  item.Subtotal(),
		ImageURL:  item.ImageURL,
		AddedAt:   item.CreatedAt,
	}
}
