package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/cart"
	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
	infra "github.com/chiclet/backend/internal/infrastructure/printing"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter order.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) ([]order.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]order.StatusCount), args.Error(1)
}

func (m *MockOrderRepository) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) Recent(ctx context.Context, limit int) ([]order.Order, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]order.Order), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockItemRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*cart.Item, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockItemRepository) FindLine(ctx context.Context, userID, productID uuid.UUID, color string) (*cart.Item, error) {
	args := m.Called(ctx, userID, productID, color)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *cart.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockItemRepository) ClearForUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockItemRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockAddressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAddressRepository) Save(ctx context.Context, a *address.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockAddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) KeyID() string {
	return "rzp_test_key"
}

func (m *MockGateway) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *MockGateway) FetchOrder(ctx context.Context, gatewayOrderID string) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *MockGateway) VerifyCheckout(gatewayOrderID, gatewayPaymentID, signature string) error {
	return m.Called(gatewayOrderID, gatewayPaymentID, signature).Error(0)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Create(ctx context.Context, u *identity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) CountActiveByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockRenderer) Close() error {
	return nil
}

// fakeTx runs the function directly and records whether it committed
type fakeTx struct {
	calls     int
	committed int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	f.committed++
	return nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}
