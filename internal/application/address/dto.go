package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/chiclet/backend/internal/domain/address"
)

// AddressRequest creates or replaces an address
type AddressRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"max=20"`
	Street    string `json:"street" binding:"required,max=300"`
	City      string `json:"city" binding:"required,max=100"`
	State     string `json:"state" binding:"required,max=100"`
	Zip       string `json:"zip" binding:"required,max=20"`
	Country   string `json:"country" binding:"required,max=100"`
	IsDefault bool   `json:"is_default"`
}

func (r AddressRequest) fields() address.Fields {
	return address.Fields{
		Name:    r.Name,
		Phone:   r.Phone,
		Street:  r.Street,
		City:    r.City,
		State:   r.State,
		Zip:     r.Zip,
		Country: r.Country,
	}
}

// AddressResponse is an address as returned by the API
type AddressResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	IsDefault bool      `json:"is_default"`
	Formatted string    `json:"formatted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToAddressResponse converts a domain address
func ToAddressResponse(a *address.Address) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		Name:      a.Name,
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
		IsDefault: a.IsDefault,
		Formatted: a.SingleLine(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
