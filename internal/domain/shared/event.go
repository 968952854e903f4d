package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something an aggregate reports after a state change.
// AggregateID is a string because orders are keyed by their order id.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	AggregateType() string
}

// EventMeta implements DomainEvent; concrete events embed it and add payload fields.
type EventMeta struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	At            time.Time `json:"occurred_at"`
	Aggregate     string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
}

func (m *EventMeta) EventID() uuid.UUID    { return m.ID }
func (m *EventMeta) EventType() string     { return m.Type }
func (m *EventMeta) OccurredAt() time.Time { return m.At }
func (m *EventMeta) AggregateID() string   { return m.Aggregate }
func (m *EventMeta) AggregateType() string { return m.AggregateKind }

// NewEventMeta stamps a new event of eventType raised by the given aggregate
func NewEventMeta(eventType, aggregateType, aggregateID string) EventMeta {
	return EventMeta{
		ID:            uuid.New(),
		Type:          eventType,
		At:            time.Now(),
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
	}
}
