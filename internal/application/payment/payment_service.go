package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
)

// Service lists recorded payments for the back office
type Service struct {
	payments payment.Repository
}

// NewService creates a payment query service
func NewService(payments payment.Repository) *Service {
	return &Service{payments: payments}
}

// List returns a page of payments, newest first by default
func (s *Service) List(ctx context.Context, q PaymentListQuery) (*shared.Paginated[PaymentResponse], error) {
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "'from' must not be after 'to'")
	}

	base := shared.DefaultFilter()
	base.Page = q.Page
	base.PageSize = q.PageSize
	base.Search = strings.TrimSpace(q.Search)
	base.OrderBy = "paid_at"
	if q.Sort != "" {
		base.OrderBy = q.Sort
	}
	if q.Order != "" {
		base.OrderDir = q.Order
	}
	filter := payment.Filter{
		Filter:  base.Normalize(),
		Status:  payment.Status(q.Status),
		OrderID: strings.TrimSpace(q.OrderID),
		From:    q.From,
		To:      q.To,
	}

	rows, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		items = append(items, ToPaymentResponse(&rows[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Get returns one payment
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}
