package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps shared by uuid-keyed rows
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity returns a fresh id with both timestamps set to now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// EventRecorder buffers the events an aggregate raised until a service
// publishes them. Orders, keyed by string, embed it directly.
type EventRecorder struct {
	domainEvents []DomainEvent `gorm:"-"`
}

func (r *EventRecorder) AddDomainEvent(event DomainEvent) {
	r.domainEvents = append(r.domainEvents, event)
}

func (r *EventRecorder) GetDomainEvents() []DomainEvent {
	return r.domainEvents
}

func (r *EventRecorder) ClearDomainEvents() {
	r.domainEvents = nil
}

// BaseAggregateRoot is a uuid-keyed aggregate with an optimistic-lock version
type BaseAggregateRoot struct {
	BaseEntity
	EventRecorder `gorm:"-"`
	Version       int `gorm:"not null;default:1"`
}

// Bump records a modification: UpdatedAt moves to now and the version
// advances so a concurrent writer holding the old version is rejected.
func (a *BaseAggregateRoot) Bump() {
	a.UpdatedAt = time.Now()
	a.Version++
}

// NewBaseAggregateRoot starts a new aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}
