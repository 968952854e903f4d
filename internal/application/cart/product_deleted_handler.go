package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/cart"
	"github.com/chiclet/backend/internal/domain/catalog"
	"github.com/chiclet/backend/internal/domain/shared"
)

// ProductDeletedHandler drops cart lines that reference a deleted product
type ProductDeletedHandler struct {
	items  cart.ItemRepository
	logger *zap.Logger
}

// NewProductDeletedHandler creates the handler
func NewProductDeletedHandler(items cart.ItemRepository, logger *zap.Logger) *ProductDeletedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductDeletedHandler{items: items, logger: logger}
}

// EventTypes returns the handled event types
func (h *ProductDeletedHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductDeleted}
}

// Handle removes the deleted product's cart lines for every user
func (h *ProductDeletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*catalog.ProductDeletedEvent)
	if !ok {
		return nil
	}
	n, err := h.items.DeleteByProduct(ctx, e.ProductID)
	if err != nil {
		return err
	}
	if n > 0 {
		h.logger.Info("removed cart lines of deleted product",
			zap.String("product_id", e.ProductID.String()),
			zap.Int64("lines", n),
		)
	}
	return nil
}

var _ shared.EventHandler = (*ProductDeletedHandler)(nil)
