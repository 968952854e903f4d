package address

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for address persistence.
// Every method is scoped to the owning user.
type Repository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// SetDefault marks id as the user's default and clears the flag on the others
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}
