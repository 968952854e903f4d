// Package payment processes payment gateway webhooks and serves payment records to admins.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/order"
	"github.com/chiclet/backend/internal/domain/payment"
	"github.com/chiclet/backend/internal/domain/shared"
)

// WebhookService records payments reported by the gateway
type WebhookService struct {
	gateway     payment.Gateway
	payments    payment.Repository
	orders      order.Repository
	idempotency shared.IdempotencyStore
	config      shared.IdempotencyConfig
	events      shared.EventPublisher
	logger      *zap.Logger
}

// WebhookServiceConfig contains the collaborators of WebhookService
type WebhookServiceConfig struct {
	Gateway     payment.Gateway
	Payments    payment.Repository
	Orders      order.Repository
	Idempotency shared.IdempotencyStore
	Config      shared.IdempotencyConfig
	Events      shared.EventPublisher
	Logger      *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Config.TTL <= 0 {
		cfg.Config = shared.DefaultIdempotencyConfig()
	}
	return &WebhookService{
		gateway:     cfg.Gateway,
		payments:    cfg.Payments,
		orders:      cfg.Orders,
		idempotency: cfg.Idempotency,
		config:      cfg.Config,
		events:      cfg.Events,
		logger:      cfg.Logger,
	}
}

// ProcessWebhook verifies and applies one webhook delivery. eventID is the
// x-razorpay-event-id header and may be empty.
//
// Signature and payload errors wrap payment.ErrInvalidSignature and
// payment.ErrMalformedPayload. Any other error means a write failed and the
// delivery may be retried.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature, eventID string) (*WebhookResult, error) {
	if s.gateway == nil {
		return nil, payment.ErrGatewayNotConfigured
	}

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected webhook delivery", zap.Error(err))
		return nil, err
	}
	event.ID = eventID

	result := &WebhookResult{EventID: eventID, EventType: event.Type, Processed: true}

	if !handles(event.Type) {
		s.logger.Debug("Unhandled webhook event type", zap.String("event_type", event.Type))
		result.Message = "Event type not handled"
		return result, nil
	}
	if event.Payment == nil {
		return nil, fmt.Errorf("%w: %s without payment entity", payment.ErrMalformedPayload, event.Type)
	}

	key := idempotencyKey(event)
	if s.idempotency != nil {
		claimed, err := s.idempotency.MarkProcessed(ctx, key, s.config.TTL)
		if err != nil {
			// the unique vendor payment id still prevents duplicate rows
			s.logger.Warn("Idempotency store unavailable, processing anyway", zap.String("key", key), zap.Error(err))
		} else if !claimed {
			s.logger.Info("Duplicate webhook delivery skipped",
				zap.String("key", key),
				zap.String("event_type", event.Type),
			)
			result.Duplicate = true
			result.Message = "Already processed"
			return result, nil
		}
	}

	s.logger.Info("Processing payment webhook",
		zap.String("event_id", eventID),
		zap.String("event_type", event.Type),
		zap.String("payment_id", event.Payment.ID),
		zap.String("gateway_order_id", event.Payment.GatewayOrderID),
	)

	if err := s.apply(ctx, event); err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_type", event.Type),
			zap.String("payment_id", event.Payment.ID),
			zap.Error(err),
		)
		if s.idempotency != nil {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		return nil, err
	}

	return result, nil
}

func (s *WebhookService) apply(ctx context.Context, event *payment.WebhookEvent) error {
	status := payment.StatusCaptured
	if event.Type == payment.EventPaymentFailed {
		status = payment.StatusFailed
	}

	wp := event.Payment
	paidAt := wp.CreatedAt
	if paidAt.IsZero() {
		paidAt = event.CreatedAt
	}

	var linked *order.Order
	if wp.GatewayOrderID != "" {
		o, err := s.orders.FindByGatewayOrderID(ctx, wp.GatewayOrderID)
		switch {
		case err == nil:
			linked = o
		case !errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("find order for %s: %w", wp.GatewayOrderID, err)
		}
	}

	if err := s.recordPayment(ctx, event, status, paidAt, linked); err != nil {
		return err
	}
	if linked == nil {
		// checkout confirmation creates the order already paid
		return nil
	}
	if status == payment.StatusCaptured {
		s.checkCapturedAmount(linked, wp)
	}
	return s.updateOrder(ctx, linked, status, wp)
}

// checkCapturedAmount flags captures that do not cover the order total.
// The order is still marked paid; the payment row records what was captured.
func (s *WebhookService) checkCapturedAmount(o *order.Order, wp *payment.WebhookPayment) {
	want := o.Money()
	if wp.Amount.MinorUnits() == want.MinorUnits() && strings.EqualFold(wp.Amount.Currency, want.Currency) {
		return
	}
	s.logger.Warn("Captured amount differs from order total",
		zap.String("order_id", o.ID),
		zap.String("payment_id", wp.ID),
		zap.String("gateway_order_id", wp.GatewayOrderID),
		zap.String("order_total", want.Amount.StringFixed(2)),
		zap.String("order_currency", want.Currency),
		zap.String("captured", wp.Amount.Amount.StringFixed(2)),
		zap.String("captured_currency", wp.Amount.Currency),
	)
}

func (s *WebhookService) recordPayment(ctx context.Context, event *payment.WebhookEvent, status payment.Status, paidAt time.Time, linked *order.Order) error {
	wp := event.Payment
	p, err := payment.NewPayment(wp.ID, wp.GatewayOrderID, wp.Amount, status, paidAt)
	if err != nil {
		return fmt.Errorf("%w: %v", payment.ErrMalformedPayload, err)
	}
	p.Method = wp.Method
	p.Email = wp.Email
	p.EventID = event.ID
	if linked != nil {
		p.LinkOrder(linked.ID)
	}

	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Info("Payment already recorded", zap.String("payment_id", wp.ID))
			return nil
		}
		return fmt.Errorf("record payment %s: %w", wp.ID, err)
	}
	return nil
}

func (s *WebhookService) updateOrder(ctx context.Context, o *order.Order, status payment.Status, wp *payment.WebhookPayment) error {
	for attempt := 0; ; attempt++ {
		var err error
		if status == payment.StatusFailed {
			err = o.MarkPaymentFailed(wp.ID)
		} else {
			err = o.MarkPaid(wp.GatewayOrderID, wp.ID)
		}
		if err != nil {
			s.logger.Warn("Order payment status not changed",
				zap.String("order_id", o.ID),
				zap.String("payment_status", string(o.PaymentStatus)),
				zap.Error(err),
			)
			return nil
		}
		if len(o.GetDomainEvents()) == 0 {
			return nil
		}

		err = s.orders.Save(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt > 0 {
			return fmt.Errorf("update order %s: %w", o.ID, err)
		}
		if o, err = s.orders.FindByID(ctx, o.ID); err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
	}

	if s.events != nil {
		events := o.GetDomainEvents()
		o.ClearDomainEvents()
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish order events", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	return nil
}

func handles(eventType string) bool {
	switch eventType {
	case payment.EventPaymentCaptured, payment.EventPaymentFailed, payment.EventOrderPaid:
		return true
	}
	return false
}

// idempotencyKey prefers the delivery id and falls back to payment id plus event type
func idempotencyKey(event *payment.WebhookEvent) string {
	if event.ID != "" {
		return "razorpay:" + event.ID
	}
	return fmt.Sprintf("payment:%s:%s", event.Payment.ID, event.Type)
}
