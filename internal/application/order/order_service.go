package order

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/shared"
)

// ErrInvalidStatus is returned for a status label that maps to no order status
var ErrInvalidStatus = shared.NewDomainError("INVALID_STATUS", "Unknown order status")

// Service serves order history to customers and order management to admins
type Service struct {
	orders order.Repository
	events shared.EventPublisher
	logger *zap.Logger
}

// NewService creates an order service
func NewService(orders order.Repository, events shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, events: events, logger: logger}
}

// ListMine returns the caller's orders, newest first by default
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, q OrderListQuery) (*shared.Paginated[OrderResponse], error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// GetMine returns one of the caller's orders. Orders of other users are reported as not found.
func (s *Service) GetMine(ctx context.Context, userID uuid.UUID, id string) (*OrderResponse, error) {
	o, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Cancel cancels one of the caller's orders while it is still processing
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID, id string, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	s.logger.Info("Order cancelled by customer",
		zap.String("order_id", o.ID),
		zap.String("user_id", userID.String()),
	)

	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns orders of all users
func (s *Service) List(ctx context.Context, q OrderListQuery) (*shared.Paginated[OrderResponse], error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

// Get returns any order
func (s *Service) Get(ctx context.Context, id string) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdateStatus moves an order along its lifecycle. Setting "shipped" on an
// order that is already shipped corrects its tracking number.
func (s *Service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*OrderResponse, error) {
	target, ok := order.ParseStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !ok {
		return nil, ErrInvalidStatus
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := o.Status

	if target == order.StatusShipped && o.Status == order.StatusShipped {
		err = o.SetTrackingNumber(req.TrackingNumber)
	} else {
		err = o.UpdateStatus(target, req.TrackingNumber, req.Note)
	}
	if err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(o.Status)),
	)

	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *Service) loadOwned(ctx context.Context, userID uuid.UUID, id string) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (s *Service) list(ctx context.Context, filter order.Filter) (*shared.Paginated[OrderResponse], error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func toFilter(q OrderListQuery) (order.Filter, error) {
	base := shared.DefaultFilter()
	base.Page = q.Page
	base.PageSize = q.PageSize
	base.Search = strings.TrimSpace(q.Search)
	if q.Sort != "" {
		base.OrderBy = q.Sort
	}
	if q.Order != "" {
		base.OrderDir = q.Order
	}

	filter := order.Filter{
		Filter:        base.Normalize(),
		PaymentStatus: order.PaymentStatus(q.PaymentStatus),
		From:          q.From,
		To:            q.To,
	}
	if q.Status != "" {
		status, ok := order.ParseStatus(strings.ToLower(q.Status))
		if !ok {
			return order.Filter{}, ErrInvalidStatus
		}
		filter.Status = status
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return order.Filter{}, shared.NewDomainError("INVALID_DATE_RANGE", "'from' must not be after 'to'")
	}
	return filter, nil
}

// isNotFound reports whether err means the order does not exist
func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
