package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var u identity.User
	if err := conn(ctx, r.db).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var u identity.User
	if err := conn(ctx, r.db).First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail checks whether an email is registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&identity.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// List returns one page of users
func (r *GormUserRepository) List(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	f := filter.Filter.Normalize()
	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&identity.User{})
		if len(filter.Roles) > 0 {
			q = q.Where("role IN ?", filter.Roles)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			q = q.Where(`(LOWER(email) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []identity.User
	err := base().
		Order(orderClause(ValidateSortField(f.OrderBy, UserSortFields, "created_at"), f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts a user; a taken email yields shared.ErrAlreadyExists
func (r *GormUserRepository) Create(ctx context.Context, u *identity.User) error {
	err := conn(ctx, r.db).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Save updates a user's profile fields. is_active is written only by SetActive.
func (r *GormUserRepository) Save(ctx context.Context, u *identity.User) error {
	result := conn(ctx, r.db).Model(&identity.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"email":         u.Email,
			"name":          u.Name,
			"password_hash": u.PasswordHash,
			"role":          u.Role,
			"version":       u.Version,
			"updated_at":    u.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetActive writes only the is_active column
func (r *GormUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := conn(ctx, r.db).Model(&identity.User{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateLastLogin writes only the last_login_at column
func (r *GormUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).Model(&identity.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// CountByRole counts users with role
func (r *GormUserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&identity.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// CountActiveByRole counts active users with role
func (r *GormUserRepository) CountActiveByRole(ctx context.Context, role identity.Role) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&identity.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
