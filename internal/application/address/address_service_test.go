package address

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/shared"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, a *address.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func validRequest() AddressRequest {
	return AddressRequest{
		Name:    "Asha Rao",
		Phone:   "+91 98765 43210",
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "KA",
		Zip:     "560001",
		Country: "India",
	}
}

func newAddress(t *testing.T, userID uuid.UUID, isDefault bool, created time.Time) *address.Address {
	t.Helper()
	a, err := address.NewAddress(userID, validRequest().fields())
	require.NoError(t, err)
	a.IsDefault = isDefault
	a.CreatedAt = created
	return a
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("first address becomes default", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, passthroughTx{}, nil)
		repo.On("CountByUser", ctx, userID).Return(int64(0), nil)
		repo.On("Save", ctx, mock.MatchedBy(func(a *address.Address) bool { return a.IsDefault })).Return(nil)

		resp, err := svc.Create(ctx, userID, validRequest())
		require.NoError(t, err)
		assert.True(t, resp.IsDefault)
		assert.Equal(t, "12 MG Road, Bengaluru, KA 560001, India", resp.Formatted)
		repo.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("later address is not default unless asked", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, passthroughTx{}, nil)
		repo.On("CountByUser", ctx, userID).Return(int64(2), nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := svc.Create(ctx, userID, validRequest())
		require.NoError(t, err)
		assert.False(t, resp.IsDefault)

		req := validRequest()
		req.IsDefault = true
		repo.On("SetDefault", ctx, userID, mock.Anything).Return(nil)
		resp, err = svc.Create(ctx, userID, req)
		require.NoError(t, err)
		assert.True(t, resp.IsDefault)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewService(new(MockRepository), passthroughTx{}, nil)
		req := validRequest()
		req.City = " "
		_, err := svc.Create(ctx, userID, req)
		require.Error(t, err)
	})

	t.Run("limit", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, passthroughTx{}, nil)
		repo.On("CountByUser", ctx, userID).Return(int64(MaxAddressesPerUser), nil)

		_, err := svc.Create(ctx, userID, validRequest())
		assert.ErrorIs(t, err, ErrAddressLimit)
	})
}

func TestService_Update_ScopedToCaller(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, passthroughTx{}, nil)
	caller, id := uuid.New(), uuid.New()
	repo.On("FindByID", ctx, caller, id).Return(nil, shared.ErrNotFound)

	_, err := svc.Update(ctx, caller, id, validRequest())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	t.Run("removing the default promotes the oldest", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, passthroughTx{}, nil)
		def := newAddress(t, userID, true, now.Add(-3*time.Hour))
		newer := newAddress(t, userID, false, now.Add(-time.Hour))
		older := newAddress(t, userID, false, now.Add(-2*time.Hour))

		repo.On("FindByID", ctx, userID, def.ID).Return(def, nil)
		repo.On("Delete", ctx, userID, def.ID).Return(nil)
		repo.On("FindByUser", ctx, userID).Return([]address.Address{*newer, *older}, nil)
		repo.On("SetDefault", ctx, userID, older.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, userID, def.ID))
		repo.AssertExpectations(t)
	})

	t.Run("removing another address leaves the default", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, passthroughTx{}, nil)
		a := newAddress(t, userID, false, now)
		repo.On("FindByID", ctx, userID, a.ID).Return(a, nil)
		repo.On("Delete", ctx, userID, a.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, userID, a.ID))
		repo.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_SetDefault(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, passthroughTx{}, nil)
	userID := uuid.New()
	a := newAddress(t, userID, false, time.Now())
	repo.On("FindByID", ctx, userID, a.ID).Return(a, nil)
	repo.On("SetDefault", ctx, userID, a.ID).Return(nil).Once()

	resp, err := svc.SetDefault(ctx, userID, a.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)

	_, err = svc.SetDefault(ctx, userID, a.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "SetDefault", 1)
}
