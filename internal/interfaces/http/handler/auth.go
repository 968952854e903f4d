package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/chiclet/backend/internal/application/identity"
	"github.com/chiclet/backend/internal/infrastructure/config"
	"github.com/chiclet/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration and sessions. Tokens are returned in
// the body and also set as HttpOnly cookies.
type AuthHandler struct {
	BaseHandler
	auth    *identityapp.AuthService
	cookies config.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *identityapp.AuthService, cookies config.CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// Register creates a customer account and starts a session
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookies(c, session)
	h.Created(c, session)
}

// Login starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookies(c, session)
	h.Success(c, session)
}

// Refresh rotates the token pair. The refresh token comes from the body or
// the refresh cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		token, _ = c.Cookie(h.cookies.RefreshName)
	}
	if token == "" {
		h.Unauthorized(c, "Refresh token required")
		return
	}

	session, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearSessionCookies(c)
		h.HandleError(c, err)
		return
	}
	h.setSessionCookies(c, session)
	h.Success(c, session)
}

// Logout revokes the current access token and the refresh token if present
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	input := identityapp.LogoutInput{UserID: userID}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		input.AccessTokenJTI = claims.ID
		input.AccessTokenTTL = claims.GetRemainingTTL()
	}
	input.RefreshToken, _ = c.Cookie(h.cookies.RefreshName)

	if err := h.auth.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearSessionCookies(c)
	h.Success(c, gin.H{"logged_out": true})
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

func (h *AuthHandler) setSessionCookies(c *gin.Context, s *identityapp.SessionResponse) {
	h.setCookie(c, h.cookies.AccessName, s.AccessToken, s.AccessTokenExpiresAt)
	h.setCookie(c, h.cookies.RefreshName, s.RefreshToken, s.RefreshTokenExpiresAt)
}

func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, h.cookies.AccessName, "", time.Unix(0, 0))
	h.setCookie(c, h.cookies.RefreshName, "", time.Unix(0, 0))
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, expires time.Time) {
	if name == "" {
		return
	}
	maxAge := int(time.Until(expires).Seconds())
	if value == "" || maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     cookiePath(h.cookies.Path),
		Domain:   h.cookies.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookies.SameSite),
	})
}

func cookiePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
