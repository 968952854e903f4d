package identity

import (
	"context"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserFilter narrows user listings
type UserFilter struct {
	shared.Filter
	Roles    []Role
	IsActive *bool
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error

	// SetActive writes only the is_active column
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// UpdateLastLogin writes only the last_login_at column
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// CountByRole counts users with the given role
	CountByRole(ctx context.Context, role Role) (int64, error)

	// CountActiveByRole counts active users with the given role
	CountActiveByRole(ctx context.Context, role Role) (int64, error)
}
