package persistence

import (
	"context"
	"errors"

	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errOrderModified matches shared.ErrConcurrencyConflict under errors.Is
var errOrderModified = shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "The order has been modified by another user")

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID loads an order with items and timeline
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := withChildren(conn(ctx, r.db)).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByGatewayOrderID finds the order created for a gateway order
func (r *GormOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	if gatewayOrderID == "" {
		return nil, shared.ErrNotFound
	}
	var o order.Order
	if err := withChildren(conn(ctx, r.db)).First(&o, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// List returns one page of orders with their items
func (r *GormOrderRepository) List(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	f := filter.Filter.Normalize()
	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&order.Order{})
		if filter.UserID != nil {
			q = q.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.PaymentStatus != "" {
			q = q.Where("payment_status = ?", filter.PaymentStatus)
		}
		if filter.From != nil {
			q = q.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("created_at < ?", *filter.To)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			q = q.Where(`(LOWER(id) LIKE ? ESCAPE '\' OR LOWER(tracking_number) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []order.Order
	err := base().
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order(orderClause(ValidateSortField(f.OrderBy, OrderSortFields, "created_at"), f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Create inserts the order with its items and timeline. A taken id yields shared.ErrAlreadyExists.
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		if len(o.Items) > 0 {
			for i := range o.Items {
				o.Items[i].OrderID = o.ID
			}
			if err := tx.Create(&o.Items).Error; err != nil {
				return err
			}
		}
		return insertTimeline(tx, o)
	})
}

// Save updates the order with optimistic locking and appends timeline events
// that are not stored yet.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&order.Order{}).
			Where("id = ?", o.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			return err
		}
		if currentVersion == 0 {
			return shared.ErrNotFound
		}
		if currentVersion != o.Version {
			return errOrderModified
		}

		nextVersion := o.Version + 1
		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", o.ID, currentVersion).
			Updates(map[string]any{
				"status":             o.Status,
				"payment_status":     o.PaymentStatus,
				"gateway_order_id":   o.GatewayOrderID,
				"gateway_payment_id": o.GatewayPaymentID,
				"tracking_number":    o.TrackingNumber,
				"cancel_reason":      o.CancelReason,
				"cancelled_at":       o.CancelledAt,
				"version":            nextVersion,
				"updated_at":         o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errOrderModified
		}

		if err := insertTimeline(tx, o); err != nil {
			return err
		}
		o.Version = nextVersion
		return nil
	})
}

func insertTimeline(tx *gorm.DB, o *order.Order) error {
	if len(o.Timeline) == 0 {
		return nil
	}
	for i := range o.Timeline {
		o.Timeline[i].OrderID = o.ID
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&o.Timeline).Error
}

// ExistsByID checks whether an order id is taken
func (r *GormOrderRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&order.Order{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CountByStatus returns order counts per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) ([]order.StatusCount, error) {
	var rows []order.StatusCount
	err := conn(ctx, r.db).Model(&order.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

// SumRevenue sums totals of paid orders that were not cancelled
func (r *GormOrderRepository) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Revenue decimal.NullDecimal
	}
	err := conn(ctx, r.db).Model(&order.Order{}).
		Select("SUM(total) AS revenue").
		Where("payment_status = ? AND status <> ?", order.PaymentStatusPaid, order.StatusCancelled).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !row.Revenue.Valid {
		return decimal.Zero, nil
	}
	return row.Revenue.Decimal, nil
}

// Recent returns the newest orders
func (r *GormOrderRepository) Recent(ctx context.Context, limit int) ([]order.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var orders []order.Order
	err := conn(ctx, r.db).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

var _ order.Repository = (*GormOrderRepository)(nil)
