package persistence

import (
	"context"
	"errors"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAddressRepository implements address.Repository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address owned by userID
func (r *GormAddressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	var a address.Address
	if err := conn(ctx, r.db).Where("user_id = ? AND id = ?", userID, id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByUser lists a user's addresses, default first
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	var list []address.Address
	if err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// CountByUser counts a user's addresses
func (r *GormAddressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&address.Address{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, a *address.Address) error {
	return conn(ctx, r.db).Save(a).Error
}

// Delete removes an address owned by userID
func (r *GormAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("user_id = ? AND id = ?", userID, id).Delete(&address.Address{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetDefault marks id as default and clears the flag on the user's other addresses
func (r *GormAddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&address.Address{}).
			Where("user_id = ? AND id <> ? AND is_default = ?", userID, id, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&address.Address{}).
			Where("user_id = ? AND id = ?", userID, id).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ address.Repository = (*GormAddressRepository)(nil)
