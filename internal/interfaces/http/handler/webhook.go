package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentapp "github.com/chiclet/backend/internal/application/payment"
	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/infrastructure/logger"
)

// Razorpay webhook headers
const (
	RazorpaySignatureHeader = "X-Razorpay-Signature"
	RazorpayEventIDHeader   = "X-Razorpay-Event-Id"
)

// DefaultMaxWebhookBytes caps webhook payloads (64 KiB)
const DefaultMaxWebhookBytes = 64 << 10

// RazorpayWebhookHandler receives Razorpay webhook deliveries. The route is
// unauthenticated; the body signature is the credential.
type RazorpayWebhookHandler struct {
	BaseHandler
	webhooks *paymentapp.WebhookService
	maxBytes int64
}

// NewRazorpayWebhookHandler creates a new RazorpayWebhookHandler
func NewRazorpayWebhookHandler(webhooks *paymentapp.WebhookService, maxBytes int64) *RazorpayWebhookHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxWebhookBytes
	}
	return &RazorpayWebhookHandler{webhooks: webhooks, maxBytes: maxBytes}
}

// WebhookResponse is the acknowledgement body
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Handle verifies and applies one delivery.
//
//	400  missing or mismatched signature, malformed JSON
//	413  payload over the size limit
//	500  a write failed; Razorpay redelivers
//	200  {"received": true}
func (h *RazorpayWebhookHandler) Handle(c *gin.Context) {
	log := logger.L(c.Request.Context())

	// The signature covers the exact bytes, so the body is read raw
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Failed to read request body"})
		return
	}
	if int64(len(payload)) > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{Message: "Payload too large"})
		return
	}

	signature := c.GetHeader(RazorpaySignatureHeader)
	if signature == "" {
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Missing " + RazorpaySignatureHeader + " header"})
		return
	}

	result, err := h.webhooks.ProcessWebhook(c.Request.Context(), payload, signature, c.GetHeader(RazorpayEventIDHeader))
	switch {
	case err == nil:
	case errors.Is(err, payment.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Webhook signature verification failed"})
		return
	case errors.Is(err, payment.ErrMalformedPayload):
		c.JSON(http.StatusBadRequest, WebhookResponse{Message: "Malformed webhook payload"})
		return
	default:
		log.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, WebhookResponse{Message: "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Duplicate: result.Duplicate,
		Message:   result.Message,
	})
}
