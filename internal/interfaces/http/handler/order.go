package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	orderapp "github.com/chiclet/backend/internal/application/order"
)

// OrderHandler serves checkout and the customer's order history
type OrderHandler struct {
	BaseHandler
	checkout *orderapp.CheckoutService
	orders   *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkout *orderapp.CheckoutService, orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

// CreatePaymentOrder opens a gateway order for the current cart
func (h *OrderHandler) CreatePaymentOrder(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req orderapp.CreatePaymentOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.checkout.CreatePaymentOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Confirm verifies the checkout signature and places the order. Replays
// with the same order id return the already placed order.
func (h *OrderHandler) Confirm(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req orderapp.ConfirmOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.checkout.ConfirmOrder(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMine lists the caller's orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var q orderapp.OrderListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.orders.ListMine(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetMine returns one of the caller's orders
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	o, err := h.orders.GetMine(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Cancel cancels a processing order
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req orderapp.CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	o, err := h.orders.Cancel(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// AdminOrderHandler serves order management in the back office
type AdminOrderHandler struct {
	BaseHandler
	orders   *orderapp.Service
	invoices *orderapp.InvoiceService
}

// NewAdminOrderHandler creates a new AdminOrderHandler. invoices may be nil
// when PDF rendering is not configured.
func NewAdminOrderHandler(orders *orderapp.Service, invoices *orderapp.InvoiceService) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, invoices: invoices}
}

// List lists all orders
func (h *AdminOrderHandler) List(c *gin.Context) {
	var q orderapp.OrderListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.orders.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get returns any order
func (h *AdminOrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// UpdateStatus moves an order along the fulfilment lifecycle
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	var req orderapp.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Invoice renders the order invoice as PDF, or as HTML with ?format=html
func (h *AdminOrderHandler) Invoice(c *gin.Context) {
	if h.invoices == nil {
		h.HandleError(c, orderapp.ErrInvoiceUnavailable)
		return
	}
	id := c.Param("id")

	if c.Query("format") == "html" {
		html, err := h.invoices.RenderHTML(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	invoice, err := h.invoices.Render(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+invoice.FileName+`"`)
	c.Header("X-Page-Count", strconv.Itoa(invoice.PageCount))
	c.Data(http.StatusOK, "application/pdf", invoice.PDF)
}
