package address

import (
	"regexp"
	"strings"
	"time"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 -]{7,20}$`)

// Address is a shipping address owned by a user
type Address struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Phone     string    `gorm:"type:varchar(20)"`
	Street    string    `gorm:"type:varchar(300);not null"`
	City      string    `gorm:"type:varchar(100);not null"`
	State     string    `gorm:"type:varchar(100);not null"`
	Zip       string    `gorm:"type:varchar(20);not null"`
	Country   string    `gorm:"type:varchar(100);not null"`
	IsDefault bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// Fields are the editable parts of an address
type Fields struct {
	Name    string
	Phone   string
	Street  string
	City    string
	State   string
	Zip     string
	Country string
}

// NewAddress creates an address for userID
func NewAddress(userID uuid.UUID, f Fields) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	f = f.trimmed()
	if err := f.validate(); err != nil {
		return nil, err
	}
	a := &Address{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
	}
	a.apply(f)
	return a, nil
}

// Update replaces the address fields
func (a *Address) Update(f Fields) error {
	f = f.trimmed()
	if err := f.validate(); err != nil {
		return err
	}
	a.apply(f)
	a.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy reports whether userID owns the address
func (a *Address) IsOwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}

// SingleLine renders the address on one line, for invoices and listings
func (a *Address) SingleLine() string {
	parts := []string{a.Street, a.City, a.State + " " + a.Zip, a.Country}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func (a *Address) apply(f Fields) {
	a.Name = f.Name
	a.Phone = f.Phone
	a.Street = f.Street
	a.City = f.City
	a.State = f.State
	a.Zip = f.Zip
	a.Country = f.Country
}

func (f Fields) trimmed() Fields {
	return Fields{
		Name:    strings.TrimSpace(f.Name),
		Phone:   strings.TrimSpace(f.Phone),
		Street:  strings.TrimSpace(f.Street),
		City:    strings.TrimSpace(f.City),
		State:   strings.TrimSpace(f.State),
		Zip:     strings.TrimSpace(f.Zip),
		Country: strings.TrimSpace(f.Country),
	}
}

func (f Fields) validate() error {
	required := []struct {
		value, field string
		max          int
	}{
		{f.Name, "name", 100},
		{f.Street, "street", 300},
		{f.City, "city", 100},
		{f.State, "state", 100},
		{f.Zip, "zip", 20},
		{f.Country, "country", 100},
	}
	for _, r := range required {
		if r.value == "" {
			return shared.NewDomainError("INVALID_ADDRESS", "Address "+r.field+" is required")
		}
		if len(r.value) > r.max {
			return shared.NewDomainError("INVALID_ADDRESS", "Address "+r.field+" is too long")
		}
	}
	if f.Phone != "" && !phonePattern.MatchString(f.Phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is invalid")
	}
	return nil
}
