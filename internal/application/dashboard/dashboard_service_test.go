package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
)

// The stubs embed the repository interfaces so only the methods the
// dashboard calls need implementing.

type stubOrders struct {
	order.Repository
	mock.Mock
}

func (m *stubOrders) CountByStatus(ctx context.Context) ([]order.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.StatusCount), args.Error(1)
}

func (m *stubOrders) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *stubOrders) Recent(ctx context.Context, limit int) ([]order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

type stubProducts struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *stubProducts) Count(ctx context.Context, activeOnly bool) (int64, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).(int64), args.Error(1)
}

type stubUsers struct {
	identity.UserRepository
	mock.Mock
}

func (m *stubUsers) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type stubPayments struct {
	payment.Repository
	mock.Mock
}

func (m *stubPayments) SummarizeCaptured(ctx context.Context, since time.Time) (payment.Summary, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(payment.Summary), args.Error(1)
}

type fixture struct {
	orders   *stubOrders
	products *stubProducts
	users    *stubUsers
	payments *stubPayments
	svc      *Service
}

func newFixture(loc *time.Location) *fixture {
	f := &fixture{
		orders:   &stubOrders{},
		products: &stubProducts{},
		users:    &stubUsers{},
		payments: &stubPayments{},
	}
	f.svc = NewService(f.orders, f.products, f.users, f.payments, loc, nil)
	return f
}

func sampleOrder(t *testing.T, id string) order.Order {
	t.Helper()
	o, err := order.NewOrder(id, uuid.New(), uuid.New(), "INR", []order.LineInput{{
		ProductID: uuid.New(),
		Name:      "Mint Chiclet",
		Color:     "#98ff98",
		Price:     decimal.NewFromInt(250),
		Quantity:  2,
	}})
	require.NoError(t, err)
	return *o
}

func TestService_Stats(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		ist = time.FixedZone("IST", 5*3600+1800)
	}
	f := newFixture(ist)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) }
	wantSince := time.Date(2026, 3, 15, 0, 0, 0, 0, ist)

	f.orders.On("CountByStatus", mock.Anything).Return([]order.StatusCount{
		{Status: order.StatusProcessing, Count: 4},
		{Status: order.StatusDelivered, Count: 6},
		{Status: order.StatusCancelled, Count: 1},
	}, nil)
	f.orders.On("SumRevenue", mock.Anything).Return(decimal.RequireFromString("12500.50"), nil)
	f.orders.On("Recent", mock.Anything, RecentOrderLimit).Return([]order.Order{
		sampleOrder(t, "order_000002"),
		sampleOrder(t, "order_000001"),
	}, nil)
	f.products.On("Count", mock.Anything, false).Return(int64(37), nil)
	f.users.On("CountByRole", mock.Anything, identity.RoleCustomer).Return(int64(120), nil)
	f.payments.On("SummarizeCaptured", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		return since.Equal(wantSince)
	})).Return(payment.Summary{Count: 3, Amount: decimal.NewFromInt(1500)}, nil)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(11), stats.TotalOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("12500.5")))
	assert.Equal(t, int64(37), stats.TotalProducts)
	assert.Equal(t, int64(120), stats.TotalCustomers)
	assert.Equal(t, map[string]int64{
		"processing": 4,
		"shipped":    0,
		"delivered":  6,
		"cancelled":  1,
	}, stats.OrdersByStatus)
	assert.Equal(t, int64(3), stats.PaymentsToday)
	assert.True(t, stats.RevenueToday.Equal(decimal.NewFromInt(1500)))
	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, "order_000002", stats.RecentOrders[0].ID)
}

func TestService_Stats_EmptyStore(t *testing.T) {
	f := newFixture(nil)
	f.orders.On("CountByStatus", mock.Anything).Return([]order.StatusCount{}, nil)
	f.orders.On("SumRevenue", mock.Anything).Return(decimal.Zero, nil)
	f.orders.On("Recent", mock.Anything, RecentOrderLimit).Return([]order.Order{}, nil)
	f.products.On("Count", mock.Anything, false).Return(int64(0), nil)
	f.users.On("CountByRole", mock.Anything, identity.RoleCustomer).Return(int64(0), nil)
	f.payments.On("SummarizeCaptured", mock.Anything, mock.Anything).Return(payment.Summary{Amount: decimal.Zero}, nil)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.Len(t, stats.OrdersByStatus, len(order.AllStatuses))
	assert.NotNil(t, stats.RecentOrders)
	assert.Empty(t, stats.RecentOrders)
}

func TestService_Stats_PropagatesError(t *testing.T) {
	f := newFixture(nil)
	boom := errors.New("connection reset")
	f.orders.On("CountByStatus", mock.Anything).Return(nil, boom)
	f.orders.On("SumRevenue", mock.Anything).Return(decimal.Zero, nil).Maybe()
	f.orders.On("Recent", mock.Anything, RecentOrderLimit).Return([]order.Order{}, nil).Maybe()
	f.products.On("Count", mock.Anything, false).Return(int64(0), nil).Maybe()
	f.users.On("CountByRole", mock.Anything, identity.RoleCustomer).Return(int64(0), nil).Maybe()
	f.payments.On("SummarizeCaptured", mock.Anything, mock.Anything).Return(payment.Summary{}, nil).Maybe()

	stats, err := f.svc.Stats(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, stats)
}
