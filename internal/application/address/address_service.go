// Package address manages the caller's shipping addresses.
package address

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/address"
	"github.com/chiclet/backend/internal/domain/shared"
)

// MaxAddressesPerUser caps the address book of one user
const MaxAddressesPerUser = 20

// ErrAddressLimit is returned when the address book is full
var ErrAddressLimit = shared.NewDomainError("ADDRESS_LIMIT", "Address book is full")

// Service manages addresses. Every operation is scoped to the calling user.
type Service struct {
	repo   address.Repository
	tx     shared.TxManager
	logger *zap.Logger
}

// NewService creates an address service
func NewService(repo address.Repository, tx shared.TxManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, tx: tx, logger: logger}
}

// List returns the caller's addresses, default first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	rows, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToAddressResponse(&rows[i]))
	}
	return out, nil
}

// Get returns one of the caller's addresses
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	a, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Create adds an address. The first address of a user becomes the default.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	a, err := address.NewAddress(userID, req.fields())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if n >= MaxAddressesPerUser {
			return ErrAddressLimit
		}
		a.IsDefault = n == 0
		if err := s.repo.Save(ctx, a); err != nil {
			return err
		}
		if req.IsDefault && !a.IsDefault {
			if err := s.repo.SetDefault(ctx, userID, a.ID); err != nil {
				return err
			}
			a.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Address created", zap.String("user_id", userID.String()), zap.String("address_id", a.ID.String()))
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Update replaces the fields of an address
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req AddressRequest) (*AddressResponse, error) {
	var a *address.Address
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := a.Update(req.fields()); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, a); err != nil {
			return err
		}
		if req.IsDefault && !a.IsDefault {
			if err := s.repo.SetDefault(ctx, userID, a.ID); err != nil {
				return err
			}
			a.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Delete removes an address. When the default is removed, the oldest
// remaining address becomes the default.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		a, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, userID, id); err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}
		rest, err := s.repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(rest) == 0 {
			return nil
		}
		oldest := rest[0]
		for _, r := range rest[1:] {
			if r.CreatedAt.Before(oldest.CreatedAt) {
				oldest = r
			}
		}
		return s.repo.SetDefault(ctx, userID, oldest.ID)
	})
}

// SetDefault makes id the caller's default address
func (s *Service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	var a *address.Address
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if a.IsDefault {
			return nil
		}
		if err := s.repo.SetDefault(ctx, userID, id); err != nil {
			return err
		}
		a.IsDefault = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}
