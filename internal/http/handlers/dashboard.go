package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quidz-backend/internal/http/response"
	"github.com/yungbote/quidz-backend/internal/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GET /api/dashboard
func (h *DashboardHandler) Participant(c *gin.Context) {
	d, err := h.dashboardService.Participant(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// GET /api/admin/stats
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	s, err := h.dashboardService.AdminStats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, s)
}
