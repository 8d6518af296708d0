package v1

import (
	"github.com/dashlite/dashlite/internal/models"
)

// NewDashboardFromModel converts a models.Dashboard to its API form.
func NewDashboardFromModel(m *models.Dashboard) Dashboard {
	return Dashboard{
		ID:                     m.ID,
		Name:                   m.Name,
		Slug:                   m.Slug,
		RefreshIntervalSeconds: m.RefreshIntervalSeconds,
	}
}

func NewDashboardListFromModels(items []models.Dashboard) []Dashboard {
	out := make([]Dashboard, 0, len(items))
	for i := range items {
		out = append(out, NewDashboardFromModel(&items[i]))
	}
	return out
}

// NewChartFromModel converts a models.Chart to its API form.
func NewChartFromModel(m *models.Chart) Chart {
	return Chart{
		ID:          m.ID,
		DashboardID: m.DashboardID,
		Name:        m.Name,
		Query:       m.Query,
		SortOrder:   m.SortOrder,
	}
}

func NewChartListFromModels(items []models.Chart) []Chart {
	out := make([]Chart, 0, len(items))
	for i := range items {
		out = append(out, NewChartFromModel(&items[i]))
	}
	return out
}

// NewSelectorFromModel converts a models.Selector to its API form.
func NewSelectorFromModel(m *models.Selector) Selector {
	return Selector{
		ID:              m.ID,
		DashboardID:     m.DashboardID,
		Name:            m.Name,
		Label:           m.Label,
		Type:            string(m.Type),
		DefaultOperator: string(m.DefaultOperator),
		IsRequired:      m.IsRequired,
		SortOrder:       m.SortOrder,
		ValueSource:     NewValueSourceFromModel(m.ValueSource),
	}
}

func NewSelectorListFromModels(items []models.Selector) []Selector {
	out := make([]Selector, 0, len(items))
	for i := range items {
		out = append(out, NewSelectorFromModel(&items[i]))
	}
	return out
}

// NewValueSourceFromModel converts a value source, keeping nil as nil.
func NewValueSourceFromModel(m *models.ValueSource) *ValueSource {
	if m == nil {
		return nil
	}
	return &ValueSource{
		Kind:             string(m.Kind),
		Items:            NewOptionItemsFromModels(m.Items),
		SourceTable:      m.SourceTable,
		SourceColumn:     m.SourceColumn,
		LabelTable:       m.LabelTable,
		LabelColumn:      m.LabelColumn,
		LabelValueColumn: m.LabelValueColumn,
	}
}

// ToModel converts a request value source to its model form, keeping nil
// as nil.
func (v *ValueSource) ToModel() *models.ValueSource {
	if v == nil {
		return nil
	}
	items := make([]models.OptionItem, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, models.OptionItem{Value: item.Value, Label: item.Label})
	}
	return &models.ValueSource{
		Kind:             models.ValueSourceKind(v.Kind),
		Items:            items,
		SourceTable:      v.SourceTable,
		SourceColumn:     v.SourceColumn,
		LabelTable:       v.LabelTable,
		LabelColumn:      v.LabelColumn,
		LabelValueColumn: v.LabelValueColumn,
	}
}

func NewOptionItemsFromModels(items []models.OptionItem) []OptionItem {
	out := make([]OptionItem, 0, len(items))
	for _, item := range items {
		out = append(out, OptionItem{Value: item.Value, Label: item.Label})
	}
	return out
}

// NewOptionsBatchFromModels converts a per-selector option map.
func NewOptionsBatchFromModels(batch map[string][]models.OptionItem) map[string][]OptionItem {
	out := make(map[string][]OptionItem, len(batch))
	for id, items := range batch {
		out[id] = NewOptionItemsFromModels(items)
	}
	return out
}

// NewMappingFromModel converts a models.Mapping to its API form.
func NewMappingFromModel(m *models.Mapping) Mapping {
	return Mapping{
		ID:               m.ID,
		SelectorID:       m.SelectorID,
		ChartID:          m.ChartID,
		TargetColumn:     m.TargetColumn,
		TargetTable:      m.TargetTable,
		OperatorOverride: string(m.OperatorOverride),
		CreatedAt:        m.CreatedAt,
	}
}

func NewMappingListFromModels(items []models.Mapping) []Mapping {
	out := make([]Mapping, 0, len(items))
	for i := range items {
		out = append(out, NewMappingFromModel(&items[i]))
	}
	return out
}

// NewRewriteResultFromModel converts a models.RewriteResult to its API form.
func NewRewriteResultFromModel(m *models.RewriteResult) RewriteResult {
	return RewriteResult{
		OriginalSQL: m.OriginalSQL,
		FilteredSQL: m.FilteredSQL,
		WhereClause: m.WhereClause,
	}
}

// NewChartResultFromModel converts one executed chart result. Tabular fields
// are never null on the wire, even for failed charts.
func NewChartResultFromModel(m *models.ChartResult) ChartResult {
	out := ChartResult{
		ChartID:    m.ChartID,
		Name:       m.Name,
		Columns:    m.Columns,
		Rows:       m.Rows,
		RowCount:   m.RowCount,
		Truncated:  m.Truncated,
		DurationMS: m.Duration.Milliseconds(),
	}

	if m.Rewrite != nil {
		rewrite := NewRewriteResultFromModel(m.Rewrite)
		out.Rewrite = &rewrite
	}
	if m.Err != nil {
		e := m.Err.Error()
		out.Error = &e
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	if out.Rows == nil {
		out.Rows = [][]string{}
	}

	return out
}

// NewRenderResponseFromModels converts a full dashboard render.
func NewRenderResponseFromModels(dashboardID string, results []models.ChartResult) RenderResponse {
	charts := make([]ChartResult, 0, len(results))
	for i := range results {
		charts = append(charts, NewChartResultFromModel(&results[i]))
	}
	return RenderResponse{DashboardID: dashboardID, Charts: charts}
}

func NewSchemaTablesFromModels(items []models.SchemaTable) []SchemaTable {
	out := make([]SchemaTable, 0, len(items))
	for _, t := range items {
		columns := t.Columns
		if columns == nil {
			columns = []string{}
		}
		out = append(out, SchemaTable{Name: t.Name, Columns: columns})
	}
	return out
}
