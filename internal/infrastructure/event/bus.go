// Package event provides the in-process domain event bus.
package event

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/shared"
)

type subscription struct {
	handler shared.EventHandler
	// nil matches every event type
	types map[string]struct{}
}

func (s subscription) matches(eventType string) bool {
	if s.types == nil {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// InMemoryEventBus dispatches events synchronously, in subscription order.
// Handler failures are logged and never fail the publisher.
type InMemoryEventBus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{logger: logger}
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty set subscribes to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]struct{}, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = struct{}{}
		}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Publish delivers each event to every matching handler
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.handlersFor(ev.EventType()) {
			if err := dispatch(ctx, h, ev); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("aggregate_id", ev.AggregateID()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []shared.EventHandler
	for _, s := range b.subs {
		if s.matches(eventType) {
			out = append(out, s.handler)
		}
	}
	return out
}

func dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
