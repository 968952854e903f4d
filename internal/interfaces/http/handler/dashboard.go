package handler

import (
	"github.com/gin-gonic/gin"

	dashboardapp "github.com/chiclet/backend/internal/application/dashboard"
)

// DashboardHandler serves back-office summary statistics
type DashboardHandler struct {
	BaseHandler
	stats *dashboardapp.Service
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(stats *dashboardapp.Service) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
