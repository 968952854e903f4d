package handler

import (
	"github.com/gin-gonic/gin"

	paymentapp "github.com/chiclet/backend/internal/application/payment"
)

// PaymentHandler lists recorded gateway payments for the back office
type PaymentHandler struct {
	BaseHandler
	payments *paymentapp.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) List(c *gin.Context) {
	var q paymentapp.PaymentListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := h.payments.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
