package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/shared"
)

type testEvent struct {
	shared.EventMeta
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{EventMeta: shared.NewEventMeta(eventType, "Product", "p-1")}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("ProductDeleted")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ProductDeleted"),
		newTestEvent("ProductDeleted"),
		newTestEvent("ProductCreated"),
	))
	assert.Equal(t, 2, handler.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("ProductDeleted")
	bus.Subscribe(handler, "OrderPlaced")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("ProductDeleted"), newTestEvent("OrderPlaced")))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	all := newTestHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_FailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("OrderPlaced")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("OrderPlaced")
	panicking.panics = true
	healthy := newTestHandler("OrderPlaced")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_SubscriptionOrder(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	all := newTestHandler()
	typed := newTestHandler("X")
	bus.Subscribe(all)
	bus.Subscribe(typed)

	got := bus.handlersFor("X")
	require.Len(t, got, 2)
	assert.Same(t, all, got[0])
	assert.Same(t, typed, got[1])
	assert.Len(t, bus.handlersFor("Y"), 1)
}
