package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/shared"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).(int64), args.Error(1)
}

type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockImageStorage) PublicURL(key string) string {
	return m.Called(key).String(0)
}

func (m *MockImageStorage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
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

func newTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:     "Beaded Bracelet",
		Price:    decimal.RequireFromString("349.00"),
		Category: "bracelets",
		Rating:   decimal.RequireFromString("4.5"),
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestProductService_Create(t *testing.T) {
	repo := new(MockProductRepository)
	events := &recordingPublisher{}
	svc := NewProductService(repo, nil, events, nil)

	repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(context.Background(), CreateProductRequest{
		Name:     "Hoop Earrings",
		Price:    decimal.RequireFromString("199.5"),
		Category: "earrings",
		Colors: []ColorInput{
			{Name: "Gold", HexCode: "#d4af37"},
			{Name: "Silver"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hoop Earrings", resp.Name)
	assert.True(t, decimal.RequireFromString("199.50").Equal(resp.Price))
	assert.Equal(t, "active", resp.Status)
	require.Len(t, resp.Colors, 2)
	assert.Equal(t, "#D4AF37", resp.Colors[0].HexCode)
	assert.True(t, resp.Rating.IsZero())
	assert.Contains(t, events.types(), catalog.EventTypeProductCreated)
	repo.AssertExpectations(t)
}

func TestProductService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateProductRequest
		code string
	}{
		{"zero price", CreateProductRequest{Name: "A", Price: decimal.Zero, Category: "c"}, "INVALID_PRICE"},
		{"negative price", CreateProductRequest{Name: "A", Price: decimal.NewFromInt(-1), Category: "c"}, "INVALID_PRICE"},
		{"empty name", CreateProductRequest{Name: "  ", Price: decimal.NewFromInt(1), Category: "c"}, "INVALID_NAME"},
		{"long name", CreateProductRequest{Name: strings.Repeat("x", 201), Price: decimal.NewFromInt(1), Category: "c"}, "INVALID_NAME"},
		{"rating too high", CreateProductRequest{Name: "A", Price: decimal.NewFromInt(1), Category: "c", Rating: ptr(decimal.NewFromInt(6))}, "INVALID_RATING"},
		{"duplicate colors", CreateProductRequest{Name: "A", Price: decimal.NewFromInt(1), Category: "c", Colors: []ColorInput{{Name: "Red"}, {Name: "red"}}}, "DUPLICATE_COLOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			svc := NewProductService(repo, nil, nil, nil)

			_, err := svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_Update(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	events := &recordingPublisher{}
	svc := NewProductService(repo, nil, events, nil)

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	newPrice := decimal.RequireFromString("299")
	resp, err := svc.Update(context.Background(), product.ID, UpdateProductRequest{
		Price:   &newPrice,
		Version: ptr(1),
	})
	require.NoError(t, err)
	assert.True(t, newPrice.Equal(resp.Price))
	assert.Equal(t, "Beaded Bracelet", resp.Name)
	assert.Equal(t, 2, resp.Version)
	assert.ElementsMatch(t, []string{catalog.EventTypeProductUpdated, catalog.EventTypeProductPriceChanged}, events.types())
}

func TestProductService_Update_RejectsNonPositivePrice(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	zero := decimal.Zero
	_, err := svc.Update(context.Background(), product.ID, UpdateProductRequest{Price: &zero})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRICE", de.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Update_StaleVersion(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.Update(context.Background(), product.ID, UpdateProductRequest{Name: ptr("New"), Version: ptr(7)})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestProductService_Delete_PublishesEvent(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	events := &recordingPublisher{}
	svc := NewProductService(repo, nil, events, nil)

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Delete", mock.Anything, product.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), product.ID))
	require.Len(t, events.events, 1)
	deleted, ok := events.events[0].(*catalog.ProductDeletedEvent)
	require.True(t, ok)
	assert.Equal(t, product.ID, deleted.ProductID)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), shared.ErrNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProductService_Get_HidesInactiveFromStorefront(t *testing.T) {
	product := newTestProduct(t)
	require.NoError(t, product.Deactivate())
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.Get(context.Background(), product.ID, true)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := svc.Get(context.Background(), product.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
}

func TestProductService_List(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	product := newTestProduct(t)

	lo := decimal.NewFromInt(100)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return f.ActiveOnly &&
			f.Category == "bracelets" &&
			f.Color == "red" &&
			f.OrderBy == "price" && f.OrderDir == "asc" &&
			f.Page == 2 && f.PageSize == 10 &&
			f.Status == "" &&
			f.MinPrice.Equal(lo)
	})).Return([]catalog.Product{*product}, int64(11), nil)

	page, err := svc.List(context.Background(), ProductListQuery{
		Page:     2,
		PageSize: 10,
		Category: " bracelets ",
		Color:    "red",
		MinPrice: &lo,
		Sort:     "price",
		Order:    "asc",
		Status:   "inactive",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
}

func TestProductService_List_Defaults(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return !f.ActiveOnly && f.OrderBy == "name" && f.OrderDir == "asc" && f.Page == 1 && f.PageSize == 20 && f.Status == catalog.ProductStatusInactive
	})).Return([]catalog.Product{}, int64(0), nil)

	_, err := svc.List(context.Background(), ProductListQuery{Sort: "name", Status: "inactive"}, false)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProductService_List_InvalidPriceRange(t *testing.T) {
	svc := NewProductService(new(MockProductRepository), nil, nil, nil)
	lo, hi := decimal.NewFromInt(500), decimal.NewFromInt(100)

	_, err := svc.List(context.Background(), ProductListQuery{MinPrice: &lo, MaxPrice: &hi}, true)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_PRICE_RANGE", de.Code)
}

func TestProductService_Colors(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, nil, nil)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	resp, err := svc.AddColor(context.Background(), product.ID, ColorInput{Name: "Lilac", HexCode: "#c8a2c8"})
	require.NoError(t, err)
	require.Len(t, resp.Colors, 1)

	_, err = svc.AddColor(context.Background(), product.ID, ColorInput{Name: "LILAC"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "DUPLICATE_COLOR", de.Code)

	resp, err = svc.RemoveColor(context.Background(), product.ID, resp.Colors[0].ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Colors)
}

func TestProductService_ActivateDeactivate(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	events := &recordingPublisher{}
	svc := NewProductService(repo, nil, events, nil)
	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)

	resp, err := svc.Deactivate(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	_, err = svc.Deactivate(context.Background(), product.ID)
	assert.Error(t, err)

	resp, err = svc.Activate(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, []string{catalog.EventTypeProductStatusChanged, catalog.EventTypeProductStatusChanged}, events.types())
}

func TestProductService_RequestImageUpload(t *testing.T) {
	product := newTestProduct(t)
	repo := new(MockProductRepository)
	store := new(MockImageStorage)
	svc := NewProductService(repo, store, nil, nil)
	svc.SetUploadExpiry(5 * time.Minute)

	expires := time.Now().Add(5 * time.Minute)
	keyPrefix := "products/" + product.ID.String() + "/"
	isKey := mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, keyPrefix) && strings.HasSuffix(k, ".png")
	})

	repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Save", mock.Anything, product).Return(nil)
	store.On("GenerateUploadURL", mock.Anything, isKey, "image/png", 5*time.Minute).Return("https://s3/put", expires, nil)
	store.On("PublicURL", isKey).Return("https://cdn/img.png")

	resp, err := svc.RequestImageUpload(context.Background(), product.ID, ImageUploadRequest{
		FileName:    "Photo.PNG",
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://s3/put", resp.UploadURL)
	assert.Equal(t, "https://cdn/img.png", resp.PublicURL)
	assert.True(t, strings.HasPrefix(resp.Key, keyPrefix))
	assert.Equal(t, "https://cdn/img.png", product.ImageURL)
	store.AssertExpectations(t)
}

func TestProductService_RequestImageUpload_Errors(t *testing.T) {
	t.Run("storage disabled", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), nil, nil, nil)
		_, err := svc.RequestImageUpload(context.Background(), uuid.New(), ImageUploadRequest{FileName: "a.png"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "STORAGE_DISABLED", de.Code)
	})

	t.Run("presign failure leaves product untouched", func(t *testing.T) {
		product := newTestProduct(t)
		repo := new(MockProductRepository)
		store := new(MockImageStorage)
		svc := NewProductService(repo, store, nil, nil)
		repo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		store.On("GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", time.Time{}, errors.New("no credentials"))

		_, err := svc.RequestImageUpload(context.Background(), product.ID, ImageUploadRequest{FileName: "a.exe"})
		require.Error(t, err)
		assert.Empty(t, product.ImageURL)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestImageKey(t *testing.T) {
	id := uuid.New()
	assert.True(t, strings.HasSuffix(imageKey(id, "x/y/pic.JPEG"), ".jpeg"))
	assert.False(t, strings.Contains(imageKey(id, "evil.sh"), ".sh"))
	assert.True(t, strings.HasPrefix(imageKey(id, "a.png"), "products/"+id.String()+"/"))
}

func ptr[T any](v T) *T { return &v }
