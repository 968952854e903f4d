// Package identity holds authentication and user administration use cases.
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
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountDeactivated = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	ErrEmailTaken         = shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Session has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid session token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Session has been revoked")
)

// AuthService handles registration and sessions
type AuthService struct {
	users     identity.UserRepository
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	events    shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service. blacklist and events may be nil.
func NewAuthService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	events shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := identity.NewUser(email, req.Name, req.Password, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	user.RecordLogin(s.now())
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Customer registered", zap.String("user_id", user.ID.String()))

	return s.issue(user)
}

// Login verifies credentials and issues a session
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountDeactivated
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user.RecordLogin(now)
	session.User.LastLoginAt = user.LastLoginAt
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return session, nil
}

// Refresh rotates a refresh token. The old refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*SessionResponse, error) {
	if refreshToken == "" {
		return nil, ErrTokenInvalid
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("Refresh token rejected", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, ErrAccountDeactivated
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims.ID, claims.GetRemainingTTL())
	return session, nil
}

// Logout revokes the presented access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.revoke(ctx, input.AccessTokenJTI, input.AccessTokenTTL)
	if input.RefreshToken != "" {
		if claims, err := s.tokens.ValidateRefreshToken(input.RefreshToken); err == nil {
			s.revoke(ctx, claims.ID, claims.GetRemainingTTL())
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ValidateSession checks an access token including revocation. It is used by
// the authentication middleware.
func (s *AuthService) ValidateSession(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("Token blacklist unavailable", zap.Error(err))
		return nil
	}
	if revoked {
		return ErrTokenRevoked
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		s.logger.Warn("Token blacklist unavailable", zap.Error(err))
		return nil
	}
	if invalidated {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, jti string, ttl time.Duration) {
	if s.blacklist == nil || jti == "" || ttl <= 0 {
		return
	}
	if err := s.blacklist.AddToBlacklist(ctx, jti, ttl); err != nil {
		s.logger.Warn("Failed to revoke token", zap.String("jti", jti), zap.Error(err))
	}
}

func (s *AuthService) issue(user *identity.User) (*SessionResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return &SessionResponse{
		User:                  ToUserResponse(user),
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	if s.events == nil {
		return
	}
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}
