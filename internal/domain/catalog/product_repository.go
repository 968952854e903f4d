package catalog

import (
	"context"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	Category   string
	Tag        string
	Color      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Status     ProductStatus
	ActiveOnly bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product together with its color variants
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs loads several products, skipping unknown IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// List returns one page of products and the total matching count
	List(ctx context.Context, filter ProductFilter) ([]Product, int64, error)

	// ListCategories returns distinct categories of active products
	ListCategories(ctx context.Context) ([]string, error)

	// Save creates or updates a product and syncs its color variants
	Save(ctx context.Context, product *Product) error

	// Delete removes a product and its color variants
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of products, optionally only active ones
	Count(ctx context.Context, activeOnly bool) (int64, error)
}
