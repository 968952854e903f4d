package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := conn(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByVendorPaymentID finds a payment by the gateway's payment id
func (r *GormPaymentRepository) FindByVendorPaymentID(ctx context.Context, vendorPaymentID string) (*payment.Payment, error) {
	var p payment.Payment
	if err := conn(ctx, r.db).First(&p, "vendor_payment_id = ?", vendorPaymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of payments, newest first by default
func (r *GormPaymentRepository) List(ctx context.Context, filter payment.Filter) ([]payment.Payment, int64, error) {
	f := filter.Filter.Normalize()
	base := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&payment.Payment{})
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.OrderID != "" {
			q = q.Where("order_id = ?", filter.OrderID)
		}
		if filter.From != nil {
			q = q.Where("paid_at >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("paid_at < ?", *filter.To)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			q = q.Where(`(LOWER(vendor_payment_id) LIKE ? ESCAPE '\' OR LOWER(gateway_order_id) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []payment.Payment
	err := base().
		Order(orderClause(ValidateSortField(f.OrderBy, PaymentSortFields, "paid_at"), f.OrderDir)).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Create inserts a payment; a duplicate vendor payment id yields shared.ErrAlreadyExists
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	err := conn(ctx, r.db).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// SummarizeCaptured counts and sums captured payments paid at or after since
func (r *GormPaymentRepository) SummarizeCaptured(ctx context.Context, since time.Time) (payment.Summary, error) {
	var row struct {
		Count  int64
		Amount decimal.NullDecimal
	}
	err := conn(ctx, r.db).Model(&payment.Payment{}).
		Select("COUNT(*) AS count, SUM(amount) AS amount").
		Where("status = ? AND paid_at >= ?", payment.StatusCaptured, since).
		Scan(&row).Error
	if err != nil {
		return payment.Summary{}, err
	}
	summary := payment.Summary{Count: row.Count, Amount: decimal.Zero}
	if row.Amount.Valid {
		summary.Amount = row.Amount.Decimal
	}
	return summary, nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
