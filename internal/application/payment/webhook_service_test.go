package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/cache"
	razorpay "github.com/chiclet/backend/internal/infrastructure/payment"
)

const webhookSecret = "whsec_test"

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByVendorPaymentID(ctx context.Context, vendorPaymentID string) (*payment.Payment, error) {
	args := m.Called(ctx, vendorPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter payment.Filter) ([]payment.Payment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) SummarizeCaptured(ctx context.Context, since time.Time) (payment.Summary, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(payment.Summary), args.Error(1)
}

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

type webhookFixture struct {
	svc      *WebhookService
	payments *MockPaymentRepository
	orders   *MockOrderRepository
	store    *cache.InMemoryIdempotencyStore
	logs     *observer.ObservedLogs
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gw, err := razorpay.NewRazorpayAdapter(&razorpay.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "rzp_test_secret",
		WebhookSecret: webhookSecret,
	})
	require.NoError(t, err)

	f := &webhookFixture{
		payments: new(MockPaymentRepository),
		orders:   new(MockOrderRepository),
		store:    cache.NewInMemoryIdempotencyStore(),
	}
	t.Cleanup(func() { _ = f.store.Close() })
	core, logs := observer.New(zapcore.WarnLevel)
	f.logs = logs
	f.svc = NewWebhookService(WebhookServiceConfig{
		Gateway:     gw,
		Payments:    f.payments,
		Orders:      f.orders,
		Idempotency: f.store,
		Logger:      zap.New(core),
	})
	return f
}

func webhookBody(event, paymentID, gatewayOrderID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{"entity":"event","event":%q,"payload":{"payment":{"entity":{"id":%q,"amount":%d,"currency":"INR","status":"captured","order_id":%q,"method":"card","email":"asha@example.com","created_at":1700000000}}},"created_at":1700000005}`,
		event, paymentID, amount, gatewayOrderID))
}

func pendingOrder(t *testing.T, gatewayOrderID string) *order.Order {
	t.Helper()
	o, err := order.NewOrder("", uuid.New(), uuid.New(), "INR", []order.LineInput{{
		ProductID: uuid.New(), Name: "Clip", Price: decimal.RequireFromString("1299.50"), Quantity: 1,
	}})
	require.NoError(t, err)
	o.GatewayOrderID = gatewayOrderID
	o.ClearDomainEvents()
	return o
}

func TestWebhookService_PaymentCaptured(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentCaptured, "pay_1", "order_gw_1", 129950)

	o := pendingOrder(t, "order_gw_1")
	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_1").Return(o, nil)

	var recorded *payment.Payment
	f.payments.On("Create", ctx, mock.AnythingOfType("*payment.Payment")).
		Run(func(args mock.Arguments) { recorded = args.Get(1).(*payment.Payment) }).
		Return(nil)
	f.orders.On("Save", ctx, o).Return(nil)

	result, err := f.svc.ProcessWebhook(ctx, body, razorpay.SignWebhook(webhookSecret, body), "evt_1")
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.False(t, result.Duplicate)

	require.NotNil(t, recorded)
	assert.Equal(t, "pay_1", recorded.VendorPaymentID)
	assert.Equal(t, payment.StatusCaptured, recorded.Status)
	assert.True(t, decimal.RequireFromString("1299.50").Equal(recorded.Amount))
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), recorded.PaidAt.UTC())
	assert.Equal(t, "evt_1", recorded.EventID)
	require.NotNil(t, recorded.OrderID)
	assert.Equal(t, o.ID, *recorded.OrderID)

	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
	assert.Zero(t, f.logs.FilterMessage("Captured amount differs from order total").Len())
}

func TestWebhookService_UnderpaymentIsFlagged(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentCaptured, "pay_7", "order_gw_7", 100)

	o := pendingOrder(t, "order_gw_7")
	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_7").Return(o, nil)
	f.payments.On("Create", ctx, mock.Anything).Return(nil)
	f.orders.On("Save", ctx, o).Return(nil)

	_, err := f.svc.ProcessWebhook(ctx, body, razorpay.SignWebhook(webhookSecret, body), "evt_7")
	require.NoError(t, err)

	warnings := f.logs.FilterMessage("Captured amount differs from order total").All()
	require.Len(t, warnings, 1)
	fields := warnings[0].ContextMap()
	assert.Equal(t, o.ID, fields["order_id"])
	assert.Equal(t, "1299.50", fields["order_total"])
	assert.Equal(t, "1.00", fields["captured"])
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
}

func TestWebhookService_RejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentCaptured, "pay_1", "order_gw_1", 100)

	_, err := f.svc.ProcessWebhook(ctx, body, razorpay.SignWebhook("wrong", body), "evt_1")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	_, err = f.svc.ProcessWebhook(ctx, body, "", "evt_1")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)

	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Zero(t, f.store.Size())
}

func TestWebhookService_MalformedJSON(t *testing.T) {
	f := newWebhookFixture(t)
	body := []byte(`{"event":`)
	_, err := f.svc.ProcessWebhook(context.Background(), body, razorpay.SignWebhook(webhookSecret, body), "")
	assert.ErrorIs(t, err, payment.ErrMalformedPayload)
}

func TestWebhookService_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentCaptured, "pay_2", "order_gw_2", 5000)
	sig := razorpay.SignWebhook(webhookSecret, body)

	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_2").Return(nil, shared.ErrNotFound)
	f.payments.On("Create", ctx, mock.Anything).Return(nil).Once()

	_, err := f.svc.ProcessWebhook(ctx, body, sig, "")
	require.NoError(t, err)

	result, err := f.svc.ProcessWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	f.payments.AssertNumberOfCalls(t, "Create", 1)
}

func TestWebhookService_ExistingRowIsNotAnError(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventOrderPaid, "pay_3", "order_gw_3", 5000)

	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_3").Return(nil, shared.ErrNotFound)
	f.payments.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

	result, err := f.svc.ProcessWebhook(ctx, body, razorpay.SignWebhook(webhookSecret, body), "evt_3")
	require.NoError(t, err)
	assert.True(t, result.Processed)
}

func TestWebhookService_WriteFailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentCaptured, "pay_4", "order_gw_4", 5000)
	sig := razorpay.SignWebhook(webhookSecret, body)
	boom := errors.New("db down")

	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_4").Return(nil, shared.ErrNotFound)
	f.payments.On("Create", ctx, mock.Anything).Return(boom).Once()

	_, err := f.svc.ProcessWebhook(ctx, body, sig, "evt_4")
	require.ErrorIs(t, err, boom)
	assert.Zero(t, f.store.Size())

	f.payments.On("Create", ctx, mock.Anything).Return(nil).Once()
	result, err := f.svc.ProcessWebhook(ctx, body, sig, "evt_4")
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func TestWebhookService_PaymentFailed(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentFailed, "pay_5", "order_gw_5", 5000)

	o := pendingOrder(t, "order_gw_5")
	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_5").Return(o, nil)
	f.payments.On("Create", ctx, mock.MatchedBy(func(p *payment.Payment) bool {
		return p.Status == payment.StatusFailed
	})).Return(nil)
	f.orders.On("Save", ctx, o).Return(nil)

	_, err := f.svc.ProcessWebhook(ctx, body, razorpay.SignWebhook(webhookSecret, body), "")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusFailed, o.PaymentStatus)
}

func TestWebhookService_PaidOrderIsNotSavedAgain(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	body := webhookBody(payment.EventPaymentCaptured, "pay_6", "order_gw_6", 5000)

	o := pendingOrder(t, "order_gw_6")
	require.NoError(t, o.MarkPaid("order_gw_6", "pay_6"))
	o.ClearDomainEvents()
	f.orders.On("FindByGatewayOrderID", ctx, "order_gw_6").Return(o, nil)
	f.payments.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.svc.ProcessWebhook(ctx, body, razorpay.SignWebhook(webhookSecret, body), "")
	require.NoError(t, err)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWebhookService_UnhandledEventIsAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	body := []byte(`{"event":"refund.created","payload":{}}`)

	result, err := f.svc.ProcessWebhook(context.Background(), body, razorpay.SignWebhook(webhookSecret, body), "")
	require.NoError(t, err)
	assert.Equal(t, "Event type not handled", result.Message)
	assert.Zero(t, f.store.Size())
}

func TestWebhookService_NoGateway(t *testing.T) {
	svc := NewWebhookService(WebhookServiceConfig{})
	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig", "")
	assert.ErrorIs(t, err, payment.ErrGatewayNotConfigured)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := NewService(repo)

	p, err := payment.NewPayment("pay_9", "order_gw_9", shared.NewMoney(decimal.NewFromInt(10), "INR"), payment.StatusCaptured, time.Now())
	require.NoError(t, err)

	repo.On("List", ctx, mock.MatchedBy(func(f payment.Filter) bool {
		return f.OrderBy == "paid_at" && f.Status == payment.StatusCaptured
	})).Return([]payment.Payment{*p}, int64(1), nil)

	page, err := svc.List(ctx, PaymentListQuery{Status: "captured"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "pay_9", page.Items[0].VendorPaymentID)
}
