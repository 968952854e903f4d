package cart

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository persists cart rows
type ItemRepository interface {
	// FindByUser returns all rows of a user, oldest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Item, error)

	// FindByID returns a row owned by userID
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Item, error)

	// FindLine returns the row for (user, product, color), or shared.ErrNotFound
	FindLine(ctx context.Context, userID, productID uuid.UUID, color string) (*Item, error)

	// Save creates or updates a row
	Save(ctx context.Context, item *Item) error

	// Delete removes a row owned by userID
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// ClearForUser removes every row of userID and nothing else
	ClearForUser(ctx context.Context, userID uuid.UUID) error

	// DeleteByProduct removes rows referencing a product across all users
	DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
