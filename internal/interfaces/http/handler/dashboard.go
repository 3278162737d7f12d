package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/report"
)

// DashboardUseCase builds the admin dashboard
type DashboardUseCase interface {
	Get(ctx context.Context) (*report.Dashboard, error)
}

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardUseCase
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// @ID           getDashboard
// @Summary      Admin dashboard
// @Description  Revenue and order totals, recent orders, low stock, daily and per-category sales
// @Tags         admin
// @Produce      json
// @Success      200 {object} APIResponse[report.Dashboard]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashboardService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
