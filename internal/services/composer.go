package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// ComposerService turns active selector values into rewritten per-chart SQL.
// Composition always starts from the stored original query and never mutates
// charts, selectors or mappings.
type ComposerService struct {
	store  *store.Store
	logger *zap.SugaredLogger
}

func NewComposerService(st *store.Store) *ComposerService {
	return &ComposerService{
		store:  st,
		logger: zap.S().Named("composer"),
	}
}

// PreviewParams describes one hypothetical mapping to try against a chart.
// SelectorID and SelectorName are optional: when either is set, type and
// operator default to the saved selector's and the inline fields override
// them. SelectorName resolves within the chart's dashboard and loses to
// SelectorID when both are given. The sample value is caller-supplied and is
// not validated against the selector's value domain.
type PreviewParams struct {
	SelectorID   string
	SelectorName string
	SelectorType compose.SelectorType
	Operator     compose.Operator
	TargetColumn string
	TargetTable  string
	SampleValue  any
}

// Preview builds the predicate for a single unsaved mapping and rewrites the
// chart's current query, side by side with the original.
func (s *ComposerService) Preview(ctx context.Context, chartID string, params PreviewParams) (*models.RewriteResult, error) {
	chart, err := s.store.Chart().Get(ctx, chartID)
	if err != nil {
		return nil, err
	}

	var sel *models.Selector
	switch {
	case params.SelectorID != "":
		sel, err = s.store.Selector().Get(ctx, params.SelectorID)
	case params.SelectorName != "":
		sel, err = s.findSelectorByName(ctx, chart.DashboardID, params.SelectorName)
	}
	if err != nil {
		return nil, err
	}

	selType := params.SelectorType
	operator := params.Operator
	if sel != nil {
		if selType == "" {
			selType = sel.Type
		}
		if operator == "" {
			operator = sel.DefaultOperator
		}
	}

	if selType != "" && !selType.Valid() {
		return nil, srvErrors.NewValidationError("unknown selector type %q", string(selType))
	}
	if operator == "" && selType != "" {
		operator = selType.DefaultOperator()
	}
	if !operator.Valid() {
		return nil, srvErrors.NewValidationError("unknown operator %q", string(operator))
	}
	if selType != "" && !selType.AllowsOperator(operator) {
		return nil, srvErrors.NewValidationError("operator %q does not fit selector type %q", string(operator), string(selType))
	}
	if params.TargetColumn == "" {
		return nil, srvErrors.NewValidationError("target column is required")
	}

	value, err := compose.NormalizeValue(selType, operator, params.SampleValue)
	if err != nil {
		return nil, err
	}

	predicate, err := compose.BuildPredicate(operator, params.TargetColumn, params.TargetTable, value)
	if err != nil {
		return nil, err
	}

	filtered, clause, err := compose.Rewrite(chart.Query, []string{predicate})
	if err != nil {
		return nil, err
	}

	s.logger.Debugw("previewed mapping", "chart", chartID, "clause", clause)

	return &models.RewriteResult{
		OriginalSQL: chart.Query,
		FilteredSQL: filtered,
		WhereClause: clause,
	}, nil
}

// Apply resolves every active mapping of a dashboard and returns the
// rewritten query per chart ID. Charts with no active mappings come back
// unchanged. A required selector without an active value fails the whole
// call before any chart is composed.
func (s *ComposerService) Apply(ctx context.Context, dashboardID string, values models.FilterValues) (map[string]*models.RewriteResult, error) {
	if _, err := s.store.Dashboard().Get(ctx, dashboardID); err != nil {
		return nil, err
	}

	selectors, err := s.store.Selector().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if err := checkRequiredFilters(selectors, values); err != nil {
		return nil, err
	}

	charts, err := s.store.Chart().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	mappings, err := s.store.Mapping().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	selByID := selectorsByID(selectors)
	byChart := groupMappingsByChart(mappings)

	results := make(map[string]*models.RewriteResult, len(charts))
	for _, chart := range charts {
		rewrite, err := s.ComposeChart(&chart, selByID, byChart[chart.ID], values)
		if err != nil {
			return nil, fmt.Errorf("composing chart %s: %w", chart.ID, err)
		}
		results[chart.ID] = rewrite
	}

	s.logger.Debugw("applied filters", "dashboard", dashboardID, "charts", len(results))
	return results, nil
}

// ComposeChart rewrites one chart's query for the active values. The given
// mappings must belong to the chart in creation order, and the selectors map
// must cover them.
func (s *ComposerService) ComposeChart(chart *models.Chart, selectors map[string]*models.Selector, mappings []models.Mapping, values models.FilterValues) (*models.RewriteResult, error) {
	var predicates []string
	for _, m := range mappings {
		sel, ok := selectors[m.SelectorID]
		if !ok {
			return nil, srvErrors.NewSelectorNotFoundError(m.SelectorID)
		}
		raw := values[sel.Name]
		if !compose.IsActiveValue(raw) {
			continue
		}

		operator := m.EffectiveOperator(sel.DefaultOperator)
		value, err := compose.NormalizeValue(sel.Type, operator, raw)
		if err != nil {
			return nil, fmt.Errorf("normalizing value of selector %q: %w", sel.Name, err)
		}
		predicate, err := compose.BuildPredicate(operator, m.TargetColumn, m.TargetTable, value)
		if err != nil {
			return nil, fmt.Errorf("building predicate of selector %q: %w", sel.Name, err)
		}
		predicates = append(predicates, predicate)
	}

	filtered, clause, err := compose.Rewrite(chart.Query, predicates)
	if err != nil {
		return nil, err
	}

	return &models.RewriteResult{
		OriginalSQL: chart.Query,
		FilteredSQL: filtered,
		WhereClause: clause,
	}, nil
}

// findSelectorByName resolves a selector by its per-dashboard name.
func (s *ComposerService) findSelectorByName(ctx context.Context, dashboardID, name string) (*models.Selector, error) {
	selectors, err := s.store.Selector().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	for i := range selectors {
		if selectors[i].Name == name {
			return &selectors[i], nil
		}
	}
	return nil, srvErrors.NewSelectorNotFoundError(name)
}

// checkRequiredFilters fails when a required selector has no active value.
func checkRequiredFilters(selectors []models.Selector, values models.FilterValues) error {
	for _, sel := range selectors {
		if sel.IsRequired && !compose.IsActiveValue(values[sel.Name]) {
			return srvErrors.NewMissingRequiredFilterError(sel.Name)
		}
	}
	return nil
}

func selectorsByID(selectors []models.Selector) map[string]*models.Selector {
	byID := make(map[string]*models.Selector, len(selectors))
	for i := range selectors {
		byID[selectors[i].ID] = &selectors[i]
	}
	return byID
}

// groupMappingsByChart splits mappings per chart, keeping creation order.
func groupMappingsByChart(mappings []models.Mapping) map[string][]models.Mapping {
	byChart := make(map[string][]models.Mapping)
	for _, m := range mappings {
		byChart[m.ChartID] = append(byChart[m.ChartID], m)
	}
	return byChart
}
