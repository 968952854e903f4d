package handler

import (
	"github.com/gin-gonic/gin"

	addressapp "github.com/chiclet/backend/internal/application/address"
)

// AddressHandler manages the caller's shipping addresses
type AddressHandler struct {
	BaseHandler
	addresses *addressapp.Service
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(addresses *addressapp.Service) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	list, err := h.addresses.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

func (h *AddressHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	a, err := h.addresses.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req addressapp.AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.addresses.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req addressapp.AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.addresses.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Delete removes an address; the oldest remaining one becomes default
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.addresses.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *AddressHandler) SetDefault(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	a, err := h.addresses.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}
