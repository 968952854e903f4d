package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chiclet/backend/internal/domain/order"
)

// CreatePaymentOrderRequest starts checkout for the caller's cart
type CreatePaymentOrderRequest struct {
	AddressID uuid.UUID `json:"address_id" binding:"required"`
}

// PaymentOrderResponse is what the checkout widget needs to collect payment
type PaymentOrderResponse struct {
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"item_count"`
}

// ConfirmOrderRequest places the order after the widget reports success
type ConfirmOrderRequest struct {
	OrderID          string    `json:"order_id" binding:"omitempty,order_id"`
	AddressID        uuid.UUID `json:"address_id" binding:"required"`
	GatewayOrderID   string    `json:"gateway_order_id" binding:"required,max=64"`
	GatewayPaymentID string    `json:"gateway_payment_id" binding:"required,max=64"`
	Signature        string    `json:"signature" binding:"required,hexadecimal,len=64"`
}

// CancelOrderRequest cancels one of the caller's orders
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateStatusRequest is an admin status change
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
	Note           string `json:"note" binding:"max=500"`
}

// OrderListQuery filters order listings
type OrderListQuery struct {
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search        string     `form:"search" binding:"max=64"`
	Status        string     `form:"status"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=pending paid failed refunded"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Sort          string     `form:"sort" binding:"omitempty,oneof=created_at total status"`
	Order         string     `form:"order" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse is one order line
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Color     string          `json:"color,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// TimelineEventResponse is one timeline entry
type TimelineEventResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               string                  `json:"id"`
	UserID           uuid.UUID               `json:"user_id"`
	AddressID        uuid.UUID               `json:"address_id"`
	Total            decimal.Decimal         `json:"total"`
	Currency         string                  `json:"currency"`
	Status           string                  `json:"status"`
	PaymentStatus    string                  `json:"payment_status"`
	GatewayOrderID   string                  `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string                  `json:"gateway_payment_id,omitempty"`
	TrackingNumber   string                  `json:"tracking_number,omitempty"`
	CancelReason     string                  `json:"cancel_reason,omitempty"`
	ItemCount        int                     `json:"item_count"`
	Items            []OrderItemResponse     `json:"items"`
	Timeline         []TimelineEventResponse `json:"timeline,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Color:     it.Color,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
			ImageURL:  it.ImageURL,
		})
	}
	timeline := make([]TimelineEventResponse, 0, len(o.Timeline))
	for _, ev := range o.Timeline {
		timeline = append(timeline, TimelineEventResponse{
			Status:    string(ev.Label),
			Note:      ev.Note,
			CreatedAt: ev.CreatedAt,
		})
	}
	return OrderResponse{
		ID:               o.ID,
		UserID:           o.UserID,
		AddressID:        o.AddressID,
		Total:            o.Total,
		Currency:         o.Currency,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		GatewayOrderID:   o.GatewayOrderID,
		GatewayPaymentID: o.GatewayPaymentID,
		TrackingNumber:   o.TrackingNumber,
		CancelReason:     o.CancelReason,
		ItemCount:        o.ItemCount(),
		Items:            items,
		Timeline:         timeline,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderResponses converts a page of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
