package handler

import (
	"github.com/gin-gonic/gin"

	cartapp "github.com/chiclet/backend/internal/application/cart"
)

// CartHandler serves the signed-in user's cart
type CartHandler struct {
	BaseHandler
	carts *cartapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cartapp.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get returns the cart with its total and item count
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem adds a product line or increments an existing (product, color) line
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateQuantity sets a line quantity; zero removes the line
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	var req cartapp.UpdateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem deletes one line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear deletes every line of the caller's cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
