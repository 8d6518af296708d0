package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	v1 "github.com/dashlite/dashlite/api/v1"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/pkg/compose"
)

// ListCharts returns the charts of a dashboard in sort order.
// (GET /dashboards/:id/charts)
func (h *Handler) ListCharts(c *gin.Context) {
	charts, err := h.chartSrv.ListByDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "chart_handler", "list charts", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewChartListFromModels(charts))
}

// CreateChart registers a chart on a dashboard. The query is probed before
// the chart is saved, so broken SQL never enters the registry.
// (POST /dashboards/:id/charts)
func (h *Handler) CreateChart(c *gin.Context) {
	var req v1.ChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	chart, err := h.chartSrv.Create(c.Request.Context(), c.Param("id"), services.ChartParams{
		Name:      req.Name,
		Query:     req.Query,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeServiceError(c, "chart_handler", "create chart", err)
		return
	}

	c.JSON(http.StatusCreated, v1.NewChartFromModel(chart))
}

// GetChart returns one chart.
// (GET /charts/:id)
func (h *Handler) GetChart(c *gin.Context) {
	chart, err := h.chartSrv.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "chart_handler", "get chart", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewChartFromModel(chart))
}

// UpdateChart replaces a chart's mutable fields, re-probing the query.
// (PUT /charts/:id)
func (h *Handler) UpdateChart(c *gin.Context) {
	var req v1.ChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	chart, err := h.chartSrv.Update(c.Request.Context(), c.Param("id"), services.ChartParams{
		Name:      req.Name,
		Query:     req.Query,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeServiceError(c, "chart_handler", "update chart", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewChartFromModel(chart))
}

// DeleteChart removes a chart and its mappings.
// (DELETE /charts/:id)
func (h *Handler) DeleteChart(c *gin.Context) {
	if err := h.chartSrv.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, "chart_handler", "delete chart", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetChartColumns returns the column names the chart's query yields, for
// mapping editor autocomplete.
// (GET /charts/:id/columns)
func (h *Handler) GetChartColumns(c *gin.Context) {
	columns, err := h.chartSrv.Columns(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "chart_handler", "probe chart columns", err)
		return
	}
	if columns == nil {
		columns = []string{}
	}

	c.JSON(http.StatusOK, columns)
}

// GetChartTables returns the dataset tables the chart's query touches.
// (GET /charts/:id/tables)
func (h *Handler) GetChartTables(c *gin.Context) {
	tables, err := h.chartSrv.Tables(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "chart_handler", "resolve chart tables", err)
		return
	}
	if tables == nil {
		tables = []string{}
	}

	c.JSON(http.StatusOK, tables)
}

// GetSchemaTables returns every queryable dataset table with its columns.
// (GET /schema/tables)
func (h *Handler) GetSchemaTables(c *gin.Context) {
	tables, err := h.chartSrv.SchemaTables(c.Request.Context())
	if err != nil {
		writeServiceError(c, "chart_handler", "list schema tables", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewSchemaTablesFromModels(tables))
}

// PreviewChartFilter rewrites a chart's query for one hypothetical mapping
// with an editor-supplied sample value. Nothing is persisted.
// (POST /charts/:id/filter-preview)
func (h *Handler) PreviewChartFilter(c *gin.Context) {
	var req v1.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.composerSrv.Preview(c.Request.Context(), c.Param("id"), services.PreviewParams{
		SelectorID:   req.SelectorID,
		SelectorName: req.SelectorName,
		SelectorType: compose.SelectorType(req.SelectorType),
		Operator:     compose.Operator(req.Operator),
		TargetColumn: req.TargetColumn,
		TargetTable:  req.TargetTable,
		SampleValue:  req.SampleValue,
	})
	if err != nil {
		writeServiceError(c, "chart_handler", "preview filter", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewRewriteResultFromModel(result))
}

// ExportChart streams the filtered chart result as an xlsx workbook or CSV.
// Filter values arrive as query parameters, format through ?format=.
// (GET /charts/:id/export)
func (h *Handler) ExportChart(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		writeServiceError(c, "chart_handler", "export chart", err)
		return
	}

	chart, err := h.chartSrv.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "chart_handler", "export chart", err)
		return
	}

	values := filterValuesFromQuery(c, "format")

	// Buffered so a failed render stays a clean JSON error instead of a
	// half-written attachment.
	var buf bytes.Buffer
	if err := h.exportSrv.ExportChart(c.Request.Context(), &buf, chart.ID, values, format); err != nil {
		writeServiceError(c, "chart_handler", "export chart", err)
		return
	}

	filename := exportFilename(chart.Name, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// exportFilename builds an ASCII-safe download name from the chart name.
func exportFilename(name string, format services.ExportFormat) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
	cleaned = strings.Trim(cleaned, "-.")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s.%s", cleaned, format.Extension())
}
