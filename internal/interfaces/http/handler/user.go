package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/chiclet/backend/internal/application/identity"
)

// UserHandler manages admin accounts and lists customers
type UserHandler struct {
	BaseHandler
	users *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *identityapp.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListAdmins lists admin and super admin accounts
func (h *UserHandler) ListAdmins(c *gin.Context) {
	var q identityapp.UserListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.users.ListAdmins(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// ListCustomers lists customer accounts
func (h *UserHandler) ListCustomers(c *gin.Context) {
	var q identityapp.UserListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.users.ListCustomers(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, u)
}

// CreateAdmin creates a back-office account
func (h *UserHandler) CreateAdmin(c *gin.Context) {
	var req identityapp.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, u)
}

// ToggleActive flips is_active and nothing else
func (h *UserHandler) ToggleActive(c *gin.Context) {
	actorID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	u, err := h.users.ToggleActive(c.Request.Context(), actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, u)
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	actorID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req identityapp.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.ChangeRole(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, u)
}
