package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/chiclet/backend/internal/domain/identity"
)

// RegisterRequest creates a customer account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest starts a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair. The token may
// also come from the refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateAdminRequest creates a back-office account
type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"omitempty,oneof=admin super_admin"`
}

// ChangeRoleRequest assigns a role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin super_admin"`
}

// UserListQuery filters user listings
type UserListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"max=100"`
	IsActive *bool  `form:"is_active"`
	Sort     string `form:"sort" binding:"omitempty,oneof=created_at email name last_login_at"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// UserResponse is a user as returned by the API
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsAdmin     bool       `json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		IsAdmin:     u.IsAdmin(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// SessionResponse carries a fresh token pair. The HTTP layer also sets the
// tokens as cookies.
type SessionResponse struct {
	User                  UserResponse `json:"user"`
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID         uuid.UUID
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	RefreshToken   string
}
