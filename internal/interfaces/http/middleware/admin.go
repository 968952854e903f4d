package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiclet/backend/internal/domain/identity"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/logger"
	"github.com/chiclet/backend/internal/interfaces/http/dto"
)

// CurrentUserKey holds the user row loaded by RequireAdmin
const CurrentUserKey = "current_user"

// UserLookup loads a user by id
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// RequireAdmin must run after Auth. The user row is re-read on every
// request; inactive users and non-admins are rejected.
func RequireAdmin(users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return requireRole(users, logger.OrNop(log), func(u *identity.User) bool { return u.IsAdmin() })
}

// RequireSuperAdmin guards admin-user management
func RequireSuperAdmin(users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return requireRole(users, logger.OrNop(log), func(u *identity.User) bool {
		return u.Role == identity.RoleSuperAdmin
	})
}

func requireRole(users UserLookup, log *zap.Logger, allowed func(*identity.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == uuid.Nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
				return
			}
			log.Error("Failed to load user for authorization", zap.String("user_id", userID.String()), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		if !user.IsActive {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeAccountDeactivated, "Account has been deactivated")
			return
		}
		if !allowed(user) {
			log.Warn("Admin access denied",
				zap.String("user_id", userID.String()),
				zap.String("role", string(user.Role)),
				zap.String("path", c.Request.URL.Path),
			)
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Insufficient permissions")
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// GetCurrentUser returns the user loaded by RequireAdmin
func GetCurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}
