// Package dashboard computes back-office summary statistics.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	orderapp "github.com/chiclet/backend/internal/application/order"
	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
)

// RecentOrderLimit is the number of orders shown on the dashboard
const RecentOrderLimit = 5

// StatsResponse is the dashboard summary
type StatsResponse struct {
	TotalOrders    int64                    `json:"total_orders"`
	TotalRevenue   decimal.Decimal          `json:"total_revenue"`
	TotalProducts  int64                    `json:"total_products"`
	TotalCustomers int64                    `json:"total_customers"`
	OrdersByStatus map[string]int64         `json:"orders_by_status"`
	PaymentsToday  int64                    `json:"payments_today"`
	RevenueToday   decimal.Decimal          `json:"revenue_today"`
	RecentOrders   []orderapp.OrderResponse `json:"recent_orders"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

// Service aggregates counts across modules
type Service struct {
	orders   order.Repository
	products catalog.ProductRepository
	users    identity.UserRepository
	payments payment.Repository
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a dashboard service. "Today" is computed in loc (UTC when nil).
func NewService(orders order.Repository, products catalog.ProductRepository, users identity.UserRepository, payments payment.Repository, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		products: products,
		users:    users,
		payments: payments,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Stats returns the dashboard summary. The queries run concurrently.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	now := s.now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	resp := &StatsResponse{
		OrdersByStatus: make(map[string]int64, len(order.AllStatuses)),
		GeneratedAt:    now,
	}
	for _, st := range order.AllStatuses {
		resp.OrdersByStatus[string(st)] = 0
	}

	var (
		counts  []order.StatusCount
		recent  []order.Order
		summary payment.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.orders.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		resp.TotalRevenue, err = s.orders.SumRevenue(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.orders.Recent(gctx, RecentOrderLimit)
		return err
	})
	g.Go(func() error {
		var err error
		resp.TotalProducts, err = s.products.Count(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		resp.TotalCustomers, err = s.users.CountByRole(gctx, identity.RoleCustomer)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.payments.SummarizeCaptured(gctx, startOfDay)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute dashboard stats", zap.Error(err))
		return nil, err
	}

	for _, c := range counts {
		resp.OrdersByStatus[string(c.Status)] += c.Count
		resp.TotalOrders += c.Count
	}
	resp.PaymentsToday = summary.Count
	resp.RevenueToday = summary.Amount
	resp.RecentOrders = orderapp.ToOrderResponses(recent)
	return resp, nil
}
