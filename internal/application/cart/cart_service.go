// Package cart holds the shopping cart use cases.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/cart"
	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/shared"
)

var (
	ErrProductUnavailable = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for purchase")
	ErrColorRequired      = shared.NewDomainError("COLOR_REQUIRED", "Choose a color for this product")
	ErrUnknownColor       = shared.NewDomainError("INVALID_COLOR", "Product is not offered in this color")
)

// Service manages the rows of a user's cart
type Service struct {
	items    cart.ItemRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewService creates a cart service
func NewService(items cart.ItemRepository, products catalog.ProductRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{items: items, products: products, logger: logger}
}

// Get returns the caller's cart
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	rows, err := s.items.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart.NewCart(userID, rows))
	return &resp, nil
}

// AddItem adds quantity of a product in a color. An existing line for the
// same product and color is incremented instead of duplicated.
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive() {
		return nil, ErrProductUnavailable
	}

	color, err := resolveColor(product, req.Color)
	if err != nil {
		return nil, err
	}

	if err := s.addOrIncrement(ctx, userID, product, color, qty); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) addOrIncrement(ctx context.Context, userID uuid.UUID, product *catalog.Product, color string, qty int) error {
	for attempt := 0; attempt < 2; attempt++ {
		line, err := s.items.FindLine(ctx, userID, product.ID, color)
		switch {
		case err == nil:
			if err := line.Increase(qty); err != nil {
				return err
			}
			line.RefreshPrice(product.Price)
		case errors.Is(err, shared.ErrNotFound):
			line, err = cart.NewItem(userID, product.ID, color, qty, product.Price, product.Name, product.ImageForColor(color))
			if err != nil {
				return err
			}
		default:
			return err
		}

		err = s.items.Save(ctx, line)
		if err == nil {
			return nil
		}
		// a concurrent add created the line first; retry as an increment
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return fmt.Errorf("save cart line: %w", err)
		}
	}
	return shared.ErrConcurrencyConflict
}

// UpdateQuantity sets a line quantity. Zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartResponse, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}
	line, err := s.items.FindByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := line.SetQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, line); err != nil {
		return nil, fmt.Errorf("save cart line: %w", err)
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes one line of the caller's cart
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartResponse, error) {
	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Clear removes every line of the caller's cart and nobody else's
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.items.ClearForUser(ctx, userID)
}

func resolveColor(product *catalog.Product, requested string) (string, error) {
	if len(product.Colors) == 0 {
		return "", nil
	}
	if cart.NormalizeColor(requested) == "" {
		return "", ErrColorRequired
	}
	variant := product.FindColor(requested)
	if variant == nil {
		return "", ErrUnknownColor
	}
	return cart.NormalizeColor(variant.Name), nil
}
