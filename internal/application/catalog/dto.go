package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chiclet/backend/internal/domain/catalog"
)

// ColorInput describes a color variant in create requests
type ColorInput struct {
	Name     string `json:"name" binding:"required,min=1,max=50"`
	HexCode  string `json:"hex_code" binding:"omitempty,hexcolor"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=1000"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Price       decimal.Decimal  `json:"price"`
	Category    string           `json:"category" binding:"required,min=1,max=100"`
	Tag         string           `json:"tag" binding:"max=50"`
	Description string           `json:"description" binding:"max=5000"`
	Rating      *decimal.Decimal `json:"rating"`
	ImageURL    string           `json:"image_url" binding:"omitempty,max=1000"`
	Colors      []ColorInput     `json:"colors" binding:"omitempty,max=20,dive"`
}

// UpdateProductRequest represents a partial product update.
// Version, when set, must match the stored version.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Tag         *string          `json:"tag" binding:"omitempty,max=50"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Rating      *decimal.Decimal `json:"rating"`
	ImageURL    *string          `json:"image_url" binding:"omitempty,max=1000"`
	Version     *int             `json:"version"`
}

// ProductListQuery carries storefront and admin listing parameters
type ProductListQuery struct {
	Page     int              `form:"page" binding:"omitempty,min=1"`
	PageSize int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string           `form:"search" binding:"max=100"`
	Category string           `form:"category" binding:"max=100"`
	Tag      string           `form:"tag" binding:"max=50"`
	Color    string           `form:"color" binding:"max=50"`
	MinPrice *decimal.Decimal `form:"min_price"`
	MaxPrice *decimal.Decimal `form:"max_price"`
	Status   string           `form:"status" binding:"omitempty,oneof=active inactive"`
	Sort     string           `form:"sort" binding:"omitempty,oneof=price rating name newest"`
	Order    string           `form:"order" binding:"omitempty,oneof=asc desc"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=200"`
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// ImageUploadResponse is a presigned PUT target for a product image
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ColorResponse represents a color variant in API responses
type ColorResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	HexCode  string    `json:"hex_code,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Tag         string          `json:"tag,omitempty"`
	Description string          `json:"description,omitempty"`
	Rating      decimal.Decimal `json:"rating"`
	ImageURL    string          `json:"image_url,omitempty"`
	Status      string          `json:"status"`
	Colors      []ColorResponse `json:"colors"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ToProductResponse converts a domain product to its response form
func ToProductResponse(p *catalog.Product) ProductResponse {
	colors := make([]ColorResponse, 0, len(p.Colors))
	for _, c := range p.Colors {
		colors = append(colors, ColorResponse{
			ID:       c.ID,
			Name:     c.Name,
			HexCode:  c.HexCode,
			ImageURL: c.ImageURL,
		})
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Tag:         p.Tag,
		Description: p.Description,
		Rating:      p.Rating,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		Colors:      colors,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}
