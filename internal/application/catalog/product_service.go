// Package catalog holds the product catalog use cases.
package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/telemetry"
)

// DefaultUploadExpiry is how long a presigned image upload stays valid
const DefaultUploadExpiry = 15 * time.Minute

// ProductService handles product-related business operations
type ProductService struct {
	repo         catalog.ProductRepository
	storage      ImageStorage
	events       shared.EventPublisher
	uploadExpiry time.Duration
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. storage and events may be nil.
func NewProductService(
	repo catalog.ProductRepository,
	storage ImageStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:         repo,
		storage:      storage,
		events:       events,
		uploadExpiry: DefaultUploadExpiry,
		logger:       logger,
	}
}

// SetUploadExpiry overrides DefaultUploadExpiry
func (s *ProductService) SetUploadExpiry(d time.Duration) {
	if d > 0 {
		s.uploadExpiry = d
	}
}

// Create creates a new product with its initial color variants
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "create_product")
	defer span.End()

	rating := decimal.Zero
	if req.Rating != nil {
		rating = *req.Rating
	}
	product, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Tag:         req.Tag,
		Description: req.Description,
		Rating:      rating,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	for _, c := range req.Colors {
		if _, err := product.AddColor(c.Name, c.HexCode, c.ImageURL); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, product)

	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != product.Version {
		return nil, shared.ErrConcurrencyConflict
	}

	details := catalog.ProductDetails{
		Name:        product.Name,
		Price:       product.Price,
		Category:    product.Category,
		Tag:         product.Tag,
		Description: product.Description,
		Rating:      product.Rating,
		ImageURL:    product.ImageURL,
	}
	if req.Name != nil {
		details.Name = *req.Name
	}
	if req.Price != nil {
		details.Price = *req.Price
	}
	if req.Category != nil {
		details.Category = *req.Category
	}
	if req.Tag != nil {
		details.Tag = *req.Tag
	}
	if req.Description != nil {
		details.Description = *req.Description
	}
	if req.Rating != nil {
		details.Rating = *req.Rating
	}
	if req.ImageURL != nil {
		details.ImageURL = *req.ImageURL
	}

	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product and its color variants
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	product.AddDomainEvent(catalog.NewProductDeletedEvent(product))
	s.publish(ctx, product)

	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// Get returns a product. Storefront callers pass activeOnly so hidden
// products look absent.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activeOnly && !product.IsActive() {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns one page of products
func (s *ProductService) List(ctx context.Context, q ProductListQuery, activeOnly bool) (shared.Paginated[ProductResponse], error) {
	filter := q.toFilter(activeOnly)
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return shared.Paginated[ProductResponse]{}, shared.NewDomainError("INVALID_PRICE_RANGE", "min_price cannot exceed max_price")
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	return shared.NewPaginated(ToProductResponses(products), total, filter.Page, filter.PageSize), nil
}

// ListCategories returns distinct categories of active products
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

// AddColor adds a color variant to a product
func (s *ProductService) AddColor(ctx context.Context, id uuid.UUID, req ColorInput) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		_, err := p.AddColor(req.Name, req.HexCode, req.ImageURL)
		return err
	})
}

// RemoveColor removes a color variant from a product
func (s *ProductService) RemoveColor(ctx context.Context, id, colorID uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.RemoveColor(colorID)
	})
}

// Activate makes a product visible in the storefront
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).Activate)
}

// Deactivate hides a product from the storefront
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).Deactivate)
}

// RequestImageUpload presigns an upload for a new product image and stores
// its public URL on the product.
func (s *ProductService) RequestImageUpload(ctx context.Context, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image uploads are not configured")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := imageKey(product.ID, req.FileName)
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.uploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	publicURL := s.storage.PublicURL(key)
	if err := product.SetImage(publicURL); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	return &ImageUploadResponse{
		UploadURL: uploadURL,
		Key:       key,
		PublicURL: publicURL,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, fn func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(product); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.String("product_id", product.ID.String()), zap.Error(err))
	}
}

func imageKey(productID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ""
	}
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
}

func (q ProductListQuery) toFilter(activeOnly bool) catalog.ProductFilter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.Sort,
		OrderDir: q.Order,
		Search:   strings.TrimSpace(q.Search),
	}
	if f.OrderBy == "" {
		f.OrderBy = "newest"
	}
	// name sorts read naturally ascending; everything else defaults to desc
	if f.OrderDir == "" && f.OrderBy == "name" {
		f.OrderDir = "asc"
	}

	filter := catalog.ProductFilter{
		Filter:     f.Normalize(),
		Category:   strings.TrimSpace(q.Category),
		Tag:        strings.TrimSpace(q.Tag),
		Color:      strings.TrimSpace(q.Color),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		ActiveOnly: activeOnly,
	}
	if !activeOnly && q.Status != "" {
		filter.Status = catalog.ProductStatus(q.Status)
	}
	return filter
}
