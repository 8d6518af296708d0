package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dashlite/dashlite/internal/services"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

type Handler struct {
	dashboardSrv *services.DashboardService
	chartSrv     *services.ChartService
	selectorSrv  *services.SelectorService
	mappingSrv   *services.MappingService
	optionSrv    *services.OptionService
	composerSrv  *services.ComposerService
	executorSrv  *services.ExecutorService
	exportSrv    *services.ExportService
}

func New(
	dashboards *services.DashboardService,
	charts *services.ChartService,
	selectors *services.SelectorService,
	mappings *services.MappingService,
	options *services.OptionService,
	composer *services.ComposerService,
	executor *services.ExecutorService,
	export *services.ExportService,
) *Handler {
	return &Handler{
		dashboardSrv: dashboards,
		chartSrv:     charts,
		selectorSrv:  selectors,
		mappingSrv:   mappings,
		optionSrv:    options,
		composerSrv:  composer,
		executorSrv:  executor,
		exportSrv:    export,
	}
}

// RegisterRoutes attaches every API route to the given group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)

	router.GET("/dashboards", h.ListDashboards)
	router.POST("/dashboards", h.CreateDashboard)
	router.GET("/dashboards/:id", h.GetDashboard)
	router.PUT("/dashboards/:id", h.UpdateDashboard)
	router.DELETE("/dashboards/:id", h.DeleteDashboard)
	router.GET("/dashboards/:id/render", h.RenderDashboard)
	router.POST("/dashboards/:id/render", h.RenderDashboard)
	router.GET("/dashboards/:id/selectors", h.ListSelectors)
	router.POST("/dashboards/:id/selectors", h.CreateSelector)
	router.GET("/dashboards/:id/charts", h.ListCharts)
	router.POST("/dashboards/:id/charts", h.CreateChart)

	router.GET("/selectors/:id", h.GetSelector)
	router.PUT("/selectors/:id", h.UpdateSelector)
	router.DELETE("/selectors/:id", h.DeleteSelector)
	router.GET("/selectors/:id/options", h.GetSelectorOptions)
	router.POST("/selectors/options:batch", h.BatchSelectorOptions)
	router.GET("/selectors/:id/mappings", h.ListSelectorMappings)
	router.POST("/selectors/:id/mappings", h.CreateMapping)

	router.GET("/charts/:id", h.GetChart)
	router.PUT("/charts/:id", h.UpdateChart)
	router.DELETE("/charts/:id", h.DeleteChart)
	router.GET("/charts/:id/columns", h.GetChartColumns)
	router.GET("/charts/:id/tables", h.GetChartTables)
	router.GET("/charts/:id/export", h.ExportChart)
	router.POST("/charts/:id/filter-preview", h.PreviewChartFilter)

	router.DELETE("/mappings/:id", h.DeleteMapping)

	router.GET("/schema/tables", h.GetSchemaTables)
}

// Health reports process liveness.
// (GET /health)
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeServiceError translates service errors into HTTP statuses. Unexpected
// errors are logged and answered with a generic message so internals never
// leak to clients.
func writeServiceError(c *gin.Context, loggerName, action string, err error) {
	switch {
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case srvErrors.IsConflictError(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case srvErrors.IsMissingRequiredFilterError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case srvErrors.IsValidationError(err),
		srvErrors.IsInvalidValueShapeError(err),
		srvErrors.IsMalformedQueryError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zap.S().Named(loggerName).Errorw("failed to "+action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}
