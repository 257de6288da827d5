package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kzmshx/taskhub/internal/services"
)

// DashboardHandler coordinates dashboard HTTP handlers.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetStats returns aggregate counts over the caller's task scope.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetStats(caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
