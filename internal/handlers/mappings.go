package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/dashlite/dashlite/api/v1"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/pkg/compose"
)

// ListSelectorMappings returns a selector's mappings in creation order,
// which is also the fan-in predicate order at compose time.
// (GET /selectors/:id/mappings)
func (h *Handler) ListSelectorMappings(c *gin.Context) {
	mappings, err := h.mappingSrv.ListBySelector(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "mapping_handler", "list mappings", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewMappingListFromModels(mappings))
}

// CreateMapping binds a selector to a target column on a chart of the same
// dashboard.
// (POST /selectors/:id/mappings)
func (h *Handler) CreateMapping(c *gin.Context) {
	var req v1.MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mapping, err := h.mappingSrv.Create(c.Request.Context(), c.Param("id"), services.MappingParams{
		ChartID:          req.ChartID,
		TargetColumn:     req.TargetColumn,
		TargetTable:      req.TargetTable,
		OperatorOverride: compose.Operator(req.OperatorOverride),
	})
	if err != nil {
		writeServiceError(c, "mapping_handler", "create mapping", err)
		return
	}

	c.JSON(http.StatusCreated, v1.NewMappingFromModel(mapping))
}

// DeleteMapping unbinds a selector from a chart column.
// (DELETE /mappings/:id)
func (h *Handler) DeleteMapping(c *gin.Context) {
	if err := h.mappingSrv.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, "mapping_handler", "delete mapping", err)
		return
	}

	c.Status(http.StatusNoContent)
}
