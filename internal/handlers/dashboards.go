package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/dashlite/dashlite/api/v1"
	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/services"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// ListDashboards returns every dashboard.
// (GET /dashboards)
func (h *Handler) ListDashboards(c *gin.Context) {
	dashboards, err := h.dashboardSrv.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, "dashboard_handler", "list dashboards", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewDashboardListFromModels(dashboards))
}

// CreateDashboard registers a new dashboard.
// (POST /dashboards)
func (h *Handler) CreateDashboard(c *gin.Context) {
	var req v1.DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dashboard, err := h.dashboardSrv.Create(c.Request.Context(), services.DashboardParams{
		Name:                   req.Name,
		Slug:                   req.Slug,
		RefreshIntervalSeconds: req.RefreshIntervalSeconds,
	})
	if err != nil {
		writeServiceError(c, "dashboard_handler", "create dashboard", err)
		return
	}

	c.JSON(http.StatusCreated, v1.NewDashboardFromModel(dashboard))
}

// GetDashboard returns one dashboard, addressed by id or slug.
// (GET /dashboards/:id)
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.resolveDashboard(c)
	if err != nil {
		writeServiceError(c, "dashboard_handler", "get dashboard", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewDashboardFromModel(dashboard))
}

// UpdateDashboard replaces a dashboard's mutable fields.
// (PUT /dashboards/:id)
func (h *Handler) UpdateDashboard(c *gin.Context) {
	var req v1.DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	dashboard, err := h.dashboardSrv.Update(c.Request.Context(), c.Param("id"), services.DashboardParams{
		Name:                   req.Name,
		Slug:                   req.Slug,
		RefreshIntervalSeconds: req.RefreshIntervalSeconds,
	})
	if err != nil {
		writeServiceError(c, "dashboard_handler", "update dashboard", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewDashboardFromModel(dashboard))
}

// DeleteDashboard removes a dashboard together with its charts, selectors
// and mappings.
// (DELETE /dashboards/:id)
func (h *Handler) DeleteDashboard(c *gin.Context) {
	if err := h.dashboardSrv.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, "dashboard_handler", "delete dashboard", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// resolveDashboard looks the path parameter up as an id first, then as a
// slug. Viewers open dashboards by slug, the editor works with ids.
func (h *Handler) resolveDashboard(c *gin.Context) (*models.Dashboard, error) {
	ref := c.Param("id")

	dashboard, err := h.dashboardSrv.Get(c.Request.Context(), ref)
	if srvErrors.IsResourceNotFoundError(err) {
		return h.dashboardSrv.GetBySlug(c.Request.Context(), ref)
	}
	return dashboard, err
}
