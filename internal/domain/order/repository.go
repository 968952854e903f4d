package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chiclet/backend/internal/domain/shared"
)

// Filter narrows order listings
type Filter struct {
	shared.Filter
	UserID        *uuid.UUID
	Status        Status
	PaymentStatus PaymentStatus
	From          *time.Time
	To            *time.Time
}

// StatusCount is the number of orders in one status
type StatusCount struct {
	Status Status
	Count  int64
}

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID loads an order with items and timeline (timeline in insertion order)
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByGatewayOrderID finds the order created for a payment gateway order
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)

	// List returns one page of orders (items included) and the total count
	List(ctx context.Context, filter Filter) ([]Order, int64, error)

	// Create inserts the order, its items and its timeline
	Create(ctx context.Context, o *Order) error

	// Save updates the order row with a version check and appends new timeline events
	Save(ctx context.Context, o *Order) error

	// ExistsByID checks whether an order id is taken
	ExistsByID(ctx context.Context, id string) (bool, error)

	// CountByStatus returns order counts grouped by status
	CountByStatus(ctx context.Context) ([]StatusCount, error)

	// SumRevenue sums totals of paid orders that are not cancelled
	SumRevenue(ctx context.Context) (decimal.Decimal, error)

	// Recent returns the newest orders
	Recent(ctx context.Context, limit int) ([]Order, error)
}
