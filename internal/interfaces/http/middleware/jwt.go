package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/auth"
	"github.com/chiclet/backend/internal/infrastructure/logger"
	"github.com/chiclet/backend/internal/interfaces/http/dto"
)

// Session context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "user_id"
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionValidator validates an access token including revocation
type SessionValidator interface {
	ValidateSession(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AuthConfig configures the authentication middleware
type AuthConfig struct {
	Sessions SessionValidator
	// CookieName is the access token cookie read when no bearer header is sent
	CookieName string
	Logger     *zap.Logger
}

// Auth requires a valid session. The access token is taken from the
// Authorization bearer header, falling back to the session cookie.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	log := logger.OrNop(cfg.Logger)
	return func(c *gin.Context) {
		token := extractToken(c, cfg.CookieName)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.Sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			code, status := dto.ErrCodeTokenInvalid, http.StatusUnauthorized
			message := "Invalid session token"
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				code, status = dto.DomainErrorStatus(domainErr.Code)
				message = domainErr.Message
			}
			log.Debug("Session rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortWithError(c, status, code, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil {
			return token
		}
	}
	return ""
}

// GetJWTClaims retrieves session claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUserID returns the authenticated user id, or uuid.Nil
func GetUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(JWTUserIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
