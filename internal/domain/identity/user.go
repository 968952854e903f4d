package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization role of a user
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role grants back-office access
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// BcryptCost is the bcrypt work factor for password hashes
var BcryptCost = 12

const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a storefront customer or a back-office admin.
// Admin profiles are users whose role is admin or super_admin.
type User struct {
	shared.BaseAggregateRoot
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string `gorm:"type:varchar(100);not null"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'customer';index"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(email, name, password string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role "+string(role))
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		PasswordHash:      hash,
		Role:              role,
		IsActive:          true,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// ChangePassword replaces the password hash
func (u *User) ChangePassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Bump()
	return nil
}

// Rename changes the display name
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	u.Name = name
	u.Bump()
	return nil
}

// ToggleActive flips IsActive and nothing else.
func (u *User) ToggleActive() {
	u.IsActive = !u.IsActive
	u.AddDomainEvent(NewUserActiveToggledEvent(u))
}

// ChangeRole assigns a new role
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role "+string(role))
	}
	if u.Role == role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.Bump()
	u.AddDomainEvent(NewUserRoleChangedEvent(u, old))
	return nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// CanLogin reports whether the user may start a session
func (u *User) CanLogin() bool {
	return u.IsActive
}

// IsAdmin reports whether the user has back-office access
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}
