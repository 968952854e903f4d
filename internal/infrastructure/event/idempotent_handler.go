package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/shared"
)

// IdempotentHandler wraps an EventHandler so each event ID is handled once.
// A failed handler releases its claim so a redelivery can retry.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its ID was already claimed
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := "event:" + event.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, key, h.config.TTL)
	if err != nil {
		// Processing twice is recoverable, dropping the event is not.
		h.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
