package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/dashlite/dashlite/api/v1"
	"github.com/dashlite/dashlite/internal/models"
)

// RenderDashboard composes the active filters into every chart of a
// dashboard and executes the rewritten queries concurrently. Failed charts
// come back with a per-chart error, siblings render normally. A missing
// required filter blocks the whole render with 422.
// (GET /dashboards/:id/render, POST /dashboards/:id/render)
func (h *Handler) RenderDashboard(c *gin.Context) {
	dashboard, err := h.resolveDashboard(c)
	if err != nil {
		writeServiceError(c, "render_handler", "render dashboard", err)
		return
	}

	var values models.FilterValues
	if c.Request.Method == http.MethodPost {
		var req v1.RenderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		values = models.FilterValues(req.FilterValues)
	} else {
		values = filterValuesFromQuery(c)
	}

	results, err := h.executorSrv.RenderDashboard(c.Request.Context(), dashboard.ID, values)
	if err != nil {
		writeServiceError(c, "render_handler", "render dashboard", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewRenderResponseFromModels(dashboard.ID, results))
}

// filterValuesFromQuery reads selector values from the query string, so a
// filtered dashboard or export stays a shareable GET link. Repeated keys
// become lists, which multi select selectors expect.
func filterValuesFromQuery(c *gin.Context, reserved ...string) models.FilterValues {
	skip := make(map[string]bool, len(reserved))
	for _, key := range reserved {
		skip[key] = true
	}

	values := models.FilterValues{}
	for key, vals := range c.Request.URL.Query() {
		if skip[key] || len(vals) == 0 {
			continue
		}
		if len(vals) == 1 {
			values[key] = vals[0]
			continue
		}
		values[key] = vals
	}
	return values
}
