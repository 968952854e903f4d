package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chiclet/backend/internal/domain/cart"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartRepository implements cart.ItemRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser returns every row of a user, oldest first
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	var items []cart.Item
	if err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID returns a row owned by userID
func (r *GormCartRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*cart.Item, error) {
	var item cart.Item
	if err := conn(ctx, r.db).
		Where("user_id = ? AND id = ?", userID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindLine returns the row for (user, product, color)
func (r *GormCartRepository) FindLine(ctx context.Context, userID, productID uuid.UUID, color string) (*cart.Item, error) {
	var item cart.Item
	if err := conn(ctx, r.db).
		Where("user_id = ? AND product_id = ? AND color = ?", userID, productID, cart.NormalizeColor(color)).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save creates or updates a row. A unique index violation on
// (user, product, color) is reported as shared.ErrAlreadyExists.
func (r *GormCartRepository) Save(ctx context.Context, item *cart.Item) error {
	item.UpdatedAt = time.Now()
	err := conn(ctx, r.db).Save(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Delete removes a row owned by userID
func (r *GormCartRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("user_id = ? AND id = ?", userID, id).Delete(&cart.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearForUser removes every row of userID
func (r *GormCartRepository) ClearForUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	return conn(ctx, r.db).Where("user_id = ?", userID).Delete(&cart.Item{}).Error
}

// DeleteByProduct removes rows referencing productID across all users
func (r *GormCartRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Where("product_id = ?", productID).Delete(&cart.Item{})
	return result.RowsAffected, result.Error
}

var _ cart.ItemRepository = (*GormCartRepository)(nil)
