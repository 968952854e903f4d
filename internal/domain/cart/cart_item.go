package cart

import (
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 99

// Item is one cart row. A user has at most one row per (product, color).
type Item struct {
	shared.BaseEntity
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product_color,priority:1"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product_color,priority:2;index"`
	Color     string          `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_cart_user_product_color,priority:3"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	ImageURL  string          `gorm:"type:varchar(1000)"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "cart_items"
}

// NewItem creates a cart line
func NewItem(userID, productID uuid.UUID, color string, quantity int, price decimal.Decimal, name, imageURL string) (*Item, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}

	return &Item{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		ProductID:  productID,
		Color:      NormalizeColor(color),
		Quantity:   quantity,
		Price:      price,
		Name:       name,
		ImageURL:   imageURL,
	}, nil
}

// Increase adds n to the line quantity
func (i *Item) Increase(n int) error {
	if n <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return i.SetQuantity(i.Quantity + n)
}

// SetQuantity replaces the line quantity
func (i *Item) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// RefreshPrice updates the unit price to the product's current price
func (i *Item) RefreshPrice(price decimal.Decimal) {
	if price.IsPositive() && !price.Equal(i.Price) {
		i.Price = price
		i.UpdatedAt = time.Now()
	}
}

// Subtotal returns price * quantity
func (i *Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NormalizeColor canonicalizes the color key of a cart line
func NormalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > MaxLineQuantity {
		return shared.NewDomainError("QUANTITY_LIMIT", "Quantity cannot exceed 99 per item")
	}
	return nil
}
