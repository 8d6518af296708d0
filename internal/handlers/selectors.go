package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/dashlite/dashlite/api/v1"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/pkg/compose"
)

// ListSelectors returns the selectors of a dashboard in sort order.
// (GET /dashboards/:id/selectors)
func (h *Handler) ListSelectors(c *gin.Context) {
	selectors, err := h.selectorSrv.ListByDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "selector_handler", "list selectors", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewSelectorListFromModels(selectors))
}

// CreateSelector registers a filter control on a dashboard.
// (POST /dashboards/:id/selectors)
func (h *Handler) CreateSelector(c *gin.Context) {
	var req v1.SelectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	selector, err := h.selectorSrv.Create(c.Request.Context(), c.Param("id"), selectorParams(&req))
	if err != nil {
		writeServiceError(c, "selector_handler", "create selector", err)
		return
	}

	c.JSON(http.StatusCreated, v1.NewSelectorFromModel(selector))
}

// GetSelector returns one selector.
// (GET /selectors/:id)
func (h *Handler) GetSelector(c *gin.Context) {
	selector, err := h.selectorSrv.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "selector_handler", "get selector", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewSelectorFromModel(selector))
}

// UpdateSelector replaces a selector's mutable fields. Renames invalidate
// persisted filter-value maps, the editor is expected to warn.
// (PUT /selectors/:id)
func (h *Handler) UpdateSelector(c *gin.Context) {
	var req v1.SelectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	selector, err := h.selectorSrv.Update(c.Request.Context(), c.Param("id"), selectorParams(&req))
	if err != nil {
		writeServiceError(c, "selector_handler", "update selector", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewSelectorFromModel(selector))
}

// DeleteSelector removes a selector and its mappings.
// (DELETE /selectors/:id)
func (h *Handler) DeleteSelector(c *gin.Context) {
	if err := h.selectorSrv.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeServiceError(c, "selector_handler", "delete selector", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSelectorOptions returns the choices a selector offers.
// (GET /selectors/:id/options)
func (h *Handler) GetSelectorOptions(c *gin.Context) {
	options, err := h.optionSrv.ListOptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, "selector_handler", "list selector options", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewOptionItemsFromModels(options))
}

// BatchSelectorOptions returns option lists for many selectors in one call,
// so rendering a dashboard with a dozen selectors stays one round-trip.
// (POST /selectors/options:batch)
func (h *Handler) BatchSelectorOptions(c *gin.Context) {
	var req v1.OptionsBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	batch, err := h.optionSrv.ListOptionsBatch(c.Request.Context(), req.SelectorIDs)
	if err != nil {
		writeServiceError(c, "selector_handler", "list selector options", err)
		return
	}

	c.JSON(http.StatusOK, v1.NewOptionsBatchFromModels(batch))
}

func selectorParams(req *v1.SelectorRequest) services.SelectorParams {
	return services.SelectorParams{
		Name:            req.Name,
		Label:           req.Label,
		Type:            compose.SelectorType(req.Type),
		DefaultOperator: compose.Operator(req.DefaultOperator),
		IsRequired:      req.IsRequired,
		SortOrder:       req.SortOrder,
		ValueSource:     req.ValueSource.ToModel(),
	}
}
