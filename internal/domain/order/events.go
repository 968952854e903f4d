package order

import (
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type of order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced               = "OrderPlaced"
	EventTypeOrderStatusChanged        = "OrderStatusChanged"
	EventTypeOrderCancelled            = "OrderCancelled"
	EventTypeOrderPaymentStatusChanged = "OrderPaymentStatusChanged"
)

// OrderPlacedEvent is published when an order is created
type OrderPlacedEvent struct {
	shared.EventMeta
	OrderID   string          `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	ItemCount int             `json:"item_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		EventMeta: shared.NewEventMeta(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		Total:           o.Total,
		Currency:        o.Currency,
		ItemCount:       o.ItemCount(),
	}
}

// OrderStatusChangedEvent is published on shipment and delivery
type OrderStatusChangedEvent struct {
	shared.EventMeta
	OrderID        string `json:"order_id"`
	OldStatus      Status `json:"old_status"`
	NewStatus      Status `json:"new_status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, oldStatus Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OldStatus:       oldStatus,
		NewStatus:       o.Status,
		TrackingNumber:  o.TrackingNumber,
	}
}

// OrderCancelledEvent is published when an order is cancelled
type OrderCancelledEvent struct {
	shared.EventMeta
	OrderID       string        `json:"order_id"`
	UserID        uuid.UUID     `json:"user_id"`
	Reason        string        `json:"reason,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		EventMeta: shared.NewEventMeta(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		Reason:          o.CancelReason,
		PaymentStatus:   o.PaymentStatus,
	}
}

// OrderPaymentStatusChangedEvent is published when payment status changes
type OrderPaymentStatusChangedEvent struct {
	shared.EventMeta
	OrderID          string        `json:"order_id"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	GatewayPaymentID string        `json:"gateway_payment_id,omitempty"`
}

// NewOrderPaymentStatusChangedEvent creates a new OrderPaymentStatusChangedEvent
func NewOrderPaymentStatusChangedEvent(o *Order) *OrderPaymentStatusChangedEvent {
	return &OrderPaymentStatusChangedEvent{
		EventMeta:  shared.NewEventMeta(EventTypeOrderPaymentStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		PaymentStatus:    o.PaymentStatus,
		GatewayPaymentID: o.GatewayPaymentID,
	}
}
