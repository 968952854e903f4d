package payment

import (
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the vendor-reported status of a payment
type Status string

const (
	StatusCaptured Status = "captured"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusCaptured, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is a payment record written from a verified gateway webhook.
// Rows are unique per vendor payment id.
type Payment struct {
	shared.BaseEntity
	VendorPaymentID string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	GatewayOrderID  string          `gorm:"type:varchar(64);index"`
	OrderID         *string         `gorm:"type:varchar(64);index"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Status          Status          `gorm:"type:varchar(20);not null;index"`
	Method          string          `gorm:"type:varchar(30)"`
	Email           string          `gorm:"type:varchar(255)"`
	EventID         string          `gorm:"type:varchar(64)"`
	PaidAt          time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record
func NewPayment(vendorPaymentID, gatewayOrderID string, amount shared.Money, status Status, paidAt time.Time) (*Payment, error) {
	vendorPaymentID = strings.TrimSpace(vendorPaymentID)
	if vendorPaymentID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_ID", "Vendor payment ID cannot be empty")
	}
	if amount.Amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown payment status "+string(status))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		VendorPaymentID: vendorPaymentID,
		GatewayOrderID:  gatewayOrderID,
		Amount:          amount.Amount,
		Currency:        amount.Currency,
		Status:          status,
		PaidAt:          paidAt,
	}, nil
}

// LinkOrder associates the payment with a placed order
func (p *Payment) LinkOrder(orderID string) {
	if orderID == "" {
		return
	}
	p.OrderID = &orderID
}

// Filter narrows payment listings
type Filter struct {
	shared.Filter
	Status  Status
	OrderID string
	From    *time.Time
	To      *time.Time
}

// Summary aggregates captured payments over a period
type Summary struct {
	Count  int64
	Amount decimal.Decimal
}
