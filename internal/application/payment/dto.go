package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chiclet/backend/internal/domain/payment"
)

// PaymentListQuery filters the admin payment list
type PaymentListQuery struct {
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string     `form:"search" binding:"max=64"`
	Status   string     `form:"status" binding:"omitempty,oneof=captured failed refunded"`
	OrderID  string     `form:"order_id" binding:"max=64"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Sort     string     `form:"sort" binding:"omitempty,oneof=paid_at amount"`
	Order    string     `form:"order" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment record in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	VendorPaymentID string          `json:"vendor_payment_id"`
	GatewayOrderID  string          `json:"gateway_order_id,omitempty"`
	OrderID         *string         `json:"order_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Method          string          `json:"method,omitempty"`
	Email           string          `json:"email,omitempty"`
	PaidAt          time.Time       `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		VendorPaymentID: p.VendorPaymentID,
		GatewayOrderID:  p.GatewayOrderID,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Status:          string(p.Status),
		Method:          p.Method,
		Email:           p.Email,
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
	}
}

// WebhookResult reports how a webhook delivery was handled
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}
