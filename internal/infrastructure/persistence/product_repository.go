package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func preloadColors(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).Preload("Colors", preloadColors).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := conn(ctx, r.db).Preload("Colors", preloadColors).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// List returns one page of products matching filter and the total count
func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	f := filter.Filter.Normalize()
	base := func() *gorm.DB {
		return r.applyFilter(conn(ctx, r.db).Model(&catalog.Product{}), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol := ValidateSortField(f.OrderBy, ProductSortFields, "created_at")
	var products []catalog.Product
	err := base().Preload("Colors", preloadColors).
		Order(orderClause(sortCol, f.OrderDir)).
		Order("id ASC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.ActiveOnly {
		query = query.Where("status = ?", catalog.ProductStatusActive)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Tag != "" {
		query = query.Where("LOWER(tag) = LOWER(?)", filter.Tag)
	}
	if filter.Color != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM product_colors pc WHERE pc.product_id = products.id AND LOWER(pc.name) = LOWER(?))",
			filter.Color,
		)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	return query
}

// ListCategories returns the distinct categories of active products
func (r *GormProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := conn(ctx, r.db).Model(&catalog.Product{}).
		Where("status = ?", catalog.ProductStatusActive).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates the product or updates it with a version check, then
// replaces its color variants with the in-memory set.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&catalog.Product{}).Where("id = ?", product.ID).Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
				return err
			}
		} else {
			product.UpdatedAt = time.Now()
			result := tx.Model(&catalog.Product{}).
				Where("id = ? AND version < ?", product.ID, product.Version).
				Updates(map[string]any{
					"name":        product.Name,
					"price":       product.Price,
					"category":    product.Category,
					"tag":         product.Tag,
					"description": product.Description,
					"rating":      product.Rating,
					"image_url":   product.ImageURL,
					"status":      product.Status,
					"version":     product.Version,
					"updated_at":  product.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
		}

		return syncColors(tx, product)
	})
}

func syncColors(tx *gorm.DB, product *catalog.Product) error {
	keep := make([]uuid.UUID, 0, len(product.Colors))
	for i := range product.Colors {
		product.Colors[i].ProductID = product.ID
		keep = append(keep, product.Colors[i].ID)
	}

	del := tx.Where("product_id = ?", product.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&catalog.ColorVariant{}).Error; err != nil {
		return err
	}
	if len(product.Colors) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "hex_code", "image_url"}),
	}).Create(&product.Colors).Error
}

// Delete removes a product and its color variants
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&catalog.ColorVariant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count returns the number of products
func (r *GormProductRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var count int64
	query := conn(ctx, r.db).Model(&catalog.Product{})
	if activeOnly {
		query = query.Where("status = ?", catalog.ProductStatusActive)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
