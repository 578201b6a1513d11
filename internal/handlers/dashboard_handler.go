package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/services"
)

// DashboardHandler serves the admin landing-page aggregation.
type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", stats)
}
