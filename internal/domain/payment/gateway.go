package payment

import (
	"context"
	"errors"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
)

var (
	ErrInvalidSignature     = errors.New("payment: invalid signature")
	ErrMalformedPayload     = errors.New("payment: malformed webhook payload")
	ErrGatewayNotConfigured = errors.New("payment: gateway not configured")
	ErrGatewayRequestFailed = errors.New("payment: gateway request failed")
)

// Webhook event types handled by the store
const (
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventPaymentAuthorized = "payment.authorized"
	EventOrderPaid         = "order.paid"
)

// CreateOrderRequest asks the gateway for an order the checkout widget can pay
type CreateOrderRequest struct {
	Amount  shared.Money
	Receipt string
	Notes   map[string]string
}

// GatewayOrder is an order created at the payment gateway
type GatewayOrder struct {
	ID       string
	Amount   int64 // minor units
	Currency string
	Receipt  string
	Status   string
}

// WebhookPayment is the payment entity carried by a webhook
type WebhookPayment struct {
	ID             string
	GatewayOrderID string
	Amount         shared.Money
	Status         string
	Method         string
	Email          string
	Notes          map[string]string
	CreatedAt      time.Time
}

// WebhookEvent is a verified, decoded webhook delivery
type WebhookEvent struct {
	ID        string
	Type      string
	Payment   *WebhookPayment
	CreatedAt time.Time
}

// Gateway abstracts the payment vendor
type Gateway interface {
	// KeyID is the public key the checkout widget is opened with
	KeyID() string

	// CreateOrder creates a payable order at the vendor
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)

	// FetchOrder loads a gateway order, including the amount it was opened for
	FetchOrder(ctx context.Context, gatewayOrderID string) (*GatewayOrder, error)

	// VerifyCheckout checks the signature the checkout widget returns on success
	VerifyCheckout(gatewayOrderID, gatewayPaymentID, signature string) error

	// ParseWebhook verifies signature over the raw payload and decodes it.
	// Returns ErrInvalidSignature or ErrMalformedPayload.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
