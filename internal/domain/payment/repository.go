package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for payment persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByVendorPaymentID(ctx context.Context, vendorPaymentID string) (*Payment, error)
	List(ctx context.Context, filter Filter) ([]Payment, int64, error)

	// Create inserts a payment. It returns shared.ErrAlreadyExists when a row
	// with the same vendor payment id exists.
	Create(ctx context.Context, p *Payment) error

	// SummarizeCaptured sums captured payments paid at or after since
	SummarizeCaptured(ctx context.Context, since time.Time) (Summary, error)
}
