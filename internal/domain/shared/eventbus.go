package shared

import "context"

// EventHandler reacts to published domain events.
// EventTypes lists the types it wants; none means all of them.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher hands domain events to subscribers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
