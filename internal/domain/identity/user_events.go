package identity

import (
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeUser is the aggregate type of user events
const AggregateTypeUser = "User"

const (
	EventTypeUserCreated       = "UserCreated"
	EventTypeUserActiveToggled = "UserActiveToggled"
	EventTypeUserRoleChanged   = "UserRoleChanged"
)

// UserCreatedEvent is published when a user registers or an admin is created
type UserCreatedEvent struct {
	shared.EventMeta
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		EventMeta: shared.NewEventMeta(EventTypeUserCreated, AggregateTypeUser, u.ID.String()),
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.Role,
	}
}

// UserActiveToggledEvent is published when an account is activated or deactivated
type UserActiveToggledEvent struct {
	shared.EventMeta
	UserID   uuid.UUID `json:"user_id"`
	IsActive bool      `json:"is_active"`
}

// NewUserActiveToggledEvent creates a new UserActiveToggledEvent
func NewUserActiveToggledEvent(u *User) *UserActiveToggledEvent {
	return &UserActiveToggledEvent{
		EventMeta: shared.NewEventMeta(EventTypeUserActiveToggled, AggregateTypeUser, u.ID.String()),
		UserID:          u.ID,
		IsActive:        u.IsActive,
	}
}

// UserRoleChangedEvent is published when a user's role changes
type UserRoleChangedEvent struct {
	shared.EventMeta
	UserID  uuid.UUID `json:"user_id"`
	OldRole Role      `json:"old_role"`
	NewRole Role      `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(u *User, old Role) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypeUserRoleChanged, AggregateTypeUser, u.ID.String()),
		UserID:          u.ID,
		OldRole:         old,
		NewRole:         u.Role,
	}
}
