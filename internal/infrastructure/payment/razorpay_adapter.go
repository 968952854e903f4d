package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	paymentdomain "github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
)

const razorpayOrdersPath = "/orders"

// maxGatewayResponseBytes caps how much of an API response is read
const maxGatewayResponseBytes = 1 << 20

// RazorpayAdapter implements the payment gateway on the Razorpay Orders API
type RazorpayAdapter struct {
	config     *RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return &RazorpayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// WithHTTPClient swaps the HTTP client, used to route calls through a test server
func (a *RazorpayAdapter) WithHTTPClient(client *http.Client) *RazorpayAdapter {
	a.httpClient = client
	return a
}

// KeyID returns the public key id
func (a *RazorpayAdapter) KeyID() string {
	return a.config.KeyID
}

// CreateOrder creates a Razorpay order for the amount in minor units
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, req paymentdomain.CreateOrderRequest) (*paymentdomain.GatewayOrder, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}
	currency := req.Amount.Currency
	if currency == "" {
		currency = a.config.Currency
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.Amount.MinorUnits(),
		Currency: currency,
		Receipt:  truncate(req.Receipt, 40),
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, razorpayOrdersPath, body)
	if err != nil {
		return nil, err
	}

	return decodeOrder(respBody)
}

// FetchOrder loads an order with GET /orders/:id
func (a *RazorpayAdapter) FetchOrder(ctx context.Context, gatewayOrderID string) (*paymentdomain.GatewayOrder, error) {
	if gatewayOrderID == "" {
		return nil, shared.NewDomainError("INVALID_GATEWAY_ORDER", "Gateway order id is required")
	}
	respBody, err := a.doRequest(ctx, http.MethodGet, razorpayOrdersPath+"/"+url.PathEscape(gatewayOrderID), nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(respBody)
}

func decodeOrder(body []byte) (*paymentdomain.GatewayOrder, error) {
	var order razorpayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("razorpay: failed to parse response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: response carries no order id", paymentdomain.ErrGatewayRequestFailed)
	}

	return &paymentdomain.GatewayOrder{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   order.Status,
	}, nil
}

// VerifyCheckout checks the checkout signature, the hex HMAC-SHA256 of
// "order_id|payment_id" keyed with the key secret.
func (a *RazorpayAdapter) VerifyCheckout(gatewayOrderID, gatewayPaymentID, signature string) error {
	if gatewayOrderID == "" || gatewayPaymentID == "" {
		return paymentdomain.ErrInvalidSignature
	}
	return verifyHexHMAC([]byte(a.config.KeySecret), []byte(gatewayOrderID+"|"+gatewayPaymentID), signature)
}

// ParseWebhook verifies the x-razorpay-signature header over the raw body and
// decodes the delivery.
func (a *RazorpayAdapter) ParseWebhook(payload []byte, signature string) (*paymentdomain.WebhookEvent, error) {
	if a.config.WebhookSecret == "" {
		return nil, paymentdomain.ErrGatewayNotConfigured
	}
	if err := verifyHexHMAC([]byte(a.config.WebhookSecret), payload, signature); err != nil {
		return nil, err
	}

	var hook razorpayWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrMalformedPayload, err)
	}
	if hook.Event == "" {
		return nil, fmt.Errorf("%w: missing event", paymentdomain.ErrMalformedPayload)
	}

	event := &paymentdomain.WebhookEvent{
		Type:      hook.Event,
		CreatedAt: unixTime(hook.CreatedAt),
	}
	if hook.Payload.Payment != nil && hook.Payload.Payment.Entity.ID != "" {
		p := hook.Payload.Payment.Entity
		currency := p.Currency
		if currency == "" {
			currency = a.config.Currency
		}
		gatewayOrderID := p.OrderID
		if gatewayOrderID == "" && hook.Payload.Order != nil {
			gatewayOrderID = hook.Payload.Order.Entity.ID
		}
		event.Payment = &paymentdomain.WebhookPayment{
			ID:             p.ID,
			GatewayOrderID: gatewayOrderID,
			Amount:         shared.MoneyFromMinorUnits(p.Amount, currency),
			Status:         p.Status,
			Method:         p.Method,
			Email:          p.Email,
			Notes:          p.Notes,
			CreatedAt:      unixTime(p.CreatedAt),
		}
	}
	return event, nil
}

// SignWebhook returns the signature Razorpay would send for payload
func SignWebhook(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyHexHMAC(secret, message []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" || len(secret) == 0 {
		return paymentdomain.ErrInvalidSignature
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *RazorpayAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrGatewayRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp razorpayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return nil, fmt.Errorf("%w: %s - %s", paymentdomain.ErrGatewayRequestFailed, errResp.Error.Code, errResp.Error.Description)
		}
		return nil, fmt.Errorf("%w: HTTP %d", paymentdomain.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ paymentdomain.Gateway = (*RazorpayAdapter)(nil)
