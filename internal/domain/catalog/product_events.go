package catalog

import (
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductUpdated       = "ProductUpdated"
	EventTypeProductStatusChanged = "ProductStatusChanged"
	EventTypeProductPriceChanged  = "ProductPriceChanged"
	EventTypeProductDeleted       = "ProductDeleted"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.EventMeta
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		EventMeta: shared.NewEventMeta(EventTypeProductCreated, AggregateTypeProduct, p.ID.String()),
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Price:           p.Price,
	}
}

// ProductUpdatedEvent is published when a product is updated
type ProductUpdatedEvent struct {
	shared.EventMeta
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		EventMeta: shared.NewEventMeta(EventTypeProductUpdated, AggregateTypeProduct, p.ID.String()),
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
	}
}

// ProductStatusChangedEvent is published when a product is activated or deactivated
type ProductStatusChangedEvent struct {
	shared.EventMeta
	ProductID uuid.UUID     `json:"product_id"`
	OldStatus ProductStatus `json:"old_status"`
	NewStatus ProductStatus `json:"new_status"`
}

// NewProductStatusChangedEvent creates a new ProductStatusChangedEvent
func NewProductStatusChangedEvent(p *Product, oldStatus, newStatus ProductStatus) *ProductStatusChangedEvent {
	return &ProductStatusChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypeProductStatusChanged, AggregateTypeProduct, p.ID.String()),
		ProductID:       p.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ProductPriceChangedEvent is published when the selling price changes
type ProductPriceChangedEvent struct {
	shared.EventMeta
	ProductID uuid.UUID       `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(p *Product, oldPrice decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypeProductPriceChanged, AggregateTypeProduct, p.ID.String()),
		ProductID:       p.ID,
		OldPrice:        oldPrice,
		NewPrice:        p.Price,
	}
}

// ProductDeletedEvent is published when a product is removed from the catalog
type ProductDeletedEvent struct {
	shared.EventMeta
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		EventMeta: shared.NewEventMeta(EventTypeProductDeleted, AggregateTypeProduct, p.ID.String()),
		ProductID:       p.ID,
		Name:            p.Name,
	}
}
