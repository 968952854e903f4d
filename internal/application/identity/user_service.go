package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/auth"
)

var (
	ErrSelfDeactivation = shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	ErrSelfRoleChange   = shared.NewDomainError("CANNOT_CHANGE_OWN_ROLE", "You cannot change your own role")
	ErrLastSuperAdmin   = shared.NewDomainError("LAST_SUPER_ADMIN", "At least one super admin must remain")
)

// UserService manages admin and customer accounts from the back office
type UserService struct {
	users      identity.UserRepository
	blacklist  auth.TokenBlacklist
	sessionTTL time.Duration
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewUserService creates a user administration service. Deactivating a user
// revokes their sessions for sessionTTL when blacklist is set.
func NewUserService(users identity.UserRepository, blacklist auth.TokenBlacklist, sessionTTL time.Duration, events shared.EventPublisher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      users,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
		events:     events,
		logger:     logger,
	}
}

// ListAdmins lists back-office accounts
func (s *UserService) ListAdmins(ctx context.Context, q UserListQuery) (*shared.Paginated[UserResponse], error) {
	return s.list(ctx, q, identity.RoleAdmin, identity.RoleSuperAdmin)
}

// ListCustomers lists storefront accounts
func (s *UserService) ListCustomers(ctx context.Context, q UserListQuery) (*shared.Paginated[UserResponse], error) {
	return s.list(ctx, q, identity.RoleCustomer)
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// CreateAdmin creates an active back-office account
func (s *UserService) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*UserResponse, error) {
	role := identity.Role(req.Role)
	if role == "" {
		role = identity.RoleAdmin
	}
	if !role.IsAdmin() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Admin role must be admin or super_admin")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := identity.NewUser(email, req.Name, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Admin user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// ToggleActive flips is_active of a user. Only that column is written.
func (s *UserService) ToggleActive(ctx context.Context, actorID, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID == id && user.IsActive {
		return nil, ErrSelfDeactivation
	}
	return s.applyActive(ctx, user)
}

// SetActiveByEmail sets is_active of the user with email
func (s *UserService) SetActiveByEmail(ctx context.Context, email string, active bool) (*UserResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		resp := ToUserResponse(user)
		return &resp, nil
	}
	return s.applyActive(ctx, user)
}

func (s *UserService) applyActive(ctx context.Context, user *identity.User) (*UserResponse, error) {
	if user.IsActive && user.Role == identity.RoleSuperAdmin {
		n, err := s.users.CountActiveByRole(ctx, identity.RoleSuperAdmin)
		if err != nil {
			return nil, err
		}
		if n <= 1 {
			return nil, ErrLastSuperAdmin
		}
	}
	user.ToggleActive()
	if err := s.users.SetActive(ctx, user.ID, user.IsActive); err != nil {
		return nil, err
	}
	if !user.IsActive && s.blacklist != nil && s.sessionTTL > 0 {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.sessionTTL); err != nil {
			s.logger.Warn("Failed to revoke sessions of deactivated user", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	s.publish(ctx, user)

	s.logger.Info("User active flag changed",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_active", user.IsActive),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangeRole assigns a new role. The last super admin cannot be demoted.
func (s *UserService) ChangeRole(ctx context.Context, actorID, id uuid.UUID, req ChangeRoleRequest) (*UserResponse, error) {
	if actorID == id {
		return nil, ErrSelfRoleChange
	}
	role := identity.Role(req.Role)

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == identity.RoleSuperAdmin && role != identity.RoleSuperAdmin {
		n, err := s.users.CountByRole(ctx, identity.RoleSuperAdmin)
		if err != nil {
			return nil, err
		}
		if n <= 1 {
			return nil, ErrLastSuperAdmin
		}
	}

	previous := user.Role
	if err := user.ChangeRole(role); err != nil {
		return nil, err
	}
	if previous != user.Role {
		if err := s.users.Save(ctx, user); err != nil {
			return nil, err
		}
		s.publish(ctx, user)
		s.logger.Info("User role changed",
			zap.String("user_id", user.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(user.Role)),
		)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) list(ctx context.Context, q UserListQuery, roles ...identity.Role) (*shared.Paginated[UserResponse], error) {
	base := shared.DefaultFilter()
	base.Page = q.Page
	base.PageSize = q.PageSize
	base.Search = strings.TrimSpace(q.Search)
	if q.Sort != "" {
		base.OrderBy = q.Sort
	}
	if q.Order != "" {
		base.OrderDir = q.Order
	}
	filter := identity.UserFilter{
		Filter:   base.Normalize(),
		Roles:    roles,
		IsActive: q.IsActive,
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, 0, len(users))
	for i := range users {
		items = append(items, ToUserResponse(&users[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if s.events == nil {
		return
	}
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}
