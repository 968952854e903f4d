package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the status is a known value
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

const (
	maxNameLength        = 200
	maxCategoryLength    = 100
	maxTagLength         = 50
	maxColorNameLength   = 50
	maxImageURLLength    = 1000
	maxColorsPerProduct  = 20
	maxDescriptionLength = 5000
)

var (
	maxRating  = decimal.NewFromInt(5)
	hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Product is a sellable item in the storefront catalog.
// It is the aggregate root for its color variants.
type Product struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category    string          `gorm:"type:varchar(100);not null;index"`
	Tag         string          `gorm:"type:varchar(50);index"`
	Description string          `gorm:"type:text"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0"`
	ImageURL    string          `gorm:"type:varchar(1000)"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active';index"`
	Colors      []ColorVariant  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ColorVariant is a color a product is offered in
type ColorVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(50);not null"`
	HexCode   string    `gorm:"type:varchar(7)"`
	ImageURL  string    `gorm:"type:varchar(1000)"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ColorVariant) TableName() string {
	return "product_colors"
}

// ProductDetails groups the editable descriptive fields of a product
type ProductDetails struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	Tag         string
	Description string
	Rating      decimal.Decimal
	ImageURL    string
}

// NewProduct creates a new active product
func NewProduct(details ProductDetails) (*Product, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            ProductStatusActive,
		Colors:            make([]ColorVariant, 0),
	}
	product.apply(details)

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update replaces the descriptive fields of the product
func (p *Product) Update(details ProductDetails) error {
	if err := details.validate(); err != nil {
		return err
	}

	oldPrice := p.Price
	p.apply(details)
	p.Bump()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	if !oldPrice.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}

	return nil
}

// SetPrice changes the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	if p.Price.Equal(price) {
		return nil
	}

	oldPrice := p.Price
	p.Price = price.Round(2)
	p.Bump()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetImage sets the primary image URL
func (p *Product) SetImage(url string) error {
	if len(url) > maxImageURLLength {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot exceed 1000 characters")
	}
	p.ImageURL = url
	p.Bump()
	return nil
}

// AddColor adds a color variant. Color names are unique per product, ignoring case.
func (p *Product) AddColor(name, hexCode, imageURL string) (*ColorVariant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COLOR", "Color name cannot be empty")
	}
	if len(name) > maxColorNameLength {
		return nil, shared.NewDomainError("INVALID_COLOR", "Color name cannot exceed 50 characters")
	}
	if hexCode != "" && !hexPattern.MatchString(hexCode) {
		return nil, shared.NewDomainError("INVALID_COLOR", "Color hex code must look like #RRGGBB")
	}
	if p.HasColor(name) {
		return nil, shared.NewDomainError("DUPLICATE_COLOR", "Product already has color "+name)
	}
	if len(p.Colors) >= maxColorsPerProduct {
		return nil, shared.NewDomainError("TOO_MANY_COLORS", "Product cannot have more than 20 colors")
	}

	variant := ColorVariant{
		ID:        uuid.New(),
		ProductID: p.ID,
		Name:      name,
		HexCode:   strings.ToUpper(hexCode),
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}
	p.Colors = append(p.Colors, variant)
	p.Bump()

	return &p.Colors[len(p.Colors)-1], nil
}

// RemoveColor removes a color variant by ID
func (p *Product) RemoveColor(colorID uuid.UUID) error {
	for i, c := range p.Colors {
		if c.ID == colorID {
			p.Colors = append(p.Colors[:i], p.Colors[i+1:]...)
			p.Bump()
			return nil
		}
	}
	return shared.NewDomainError("COLOR_NOT_FOUND", "Color variant not found")
}

// HasColor reports whether the product offers the named color
func (p *Product) HasColor(name string) bool {
	return p.FindColor(name) != nil
}

// FindColor returns the variant with the given name, ignoring case
func (p *Product) FindColor(name string) *ColorVariant {
	for i := range p.Colors {
		if strings.EqualFold(p.Colors[i].Name, strings.TrimSpace(name)) {
			return &p.Colors[i]
		}
	}
	return nil
}

// ImageForColor returns the variant image when present, otherwise the product image
func (p *Product) ImageForColor(name string) string {
	if c := p.FindColor(name); c != nil && c.ImageURL != "" {
		return c.ImageURL
	}
	return p.ImageURL
}

// Activate makes the product visible in the storefront
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.changeStatus(ProductStatusActive)
	return nil
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.changeStatus(ProductStatusInactive)
	return nil
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func (p *Product) changeStatus(status ProductStatus) {
	old := p.Status
	p.Status = status
	p.Bump()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, old, status))
}

func (p *Product) apply(d ProductDetails) {
	p.Name = strings.TrimSpace(d.Name)
	p.Price = d.Price.Round(2)
	p.Category = strings.TrimSpace(d.Category)
	p.Tag = strings.TrimSpace(d.Tag)
	p.Description = d.Description
	p.Rating = d.Rating.Round(2)
	p.ImageURL = d.ImageURL
}

func (d ProductDetails) validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if err := validatePrice(d.Price); err != nil {
		return err
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category cannot be empty")
	}
	if len(category) > maxCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Product category cannot exceed 100 characters")
	}
	if len(d.Tag) > maxTagLength {
		return shared.NewDomainError("INVALID_TAG", "Product tag cannot exceed 50 characters")
	}
	if len(d.Description) > maxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Product description cannot exceed 5000 characters")
	}
	if d.Rating.IsNegative() || d.Rating.GreaterThan(maxRating) {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 0 and 5")
	}
	if len(d.ImageURL) > maxImageURLLength {
		return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot exceed 1000 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return nil
}
