package v1

import "time"

// Dashboard is the wire form of a dashboard.
type Dashboard struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Slug                   string `json:"slug"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
}

// DashboardRequest creates or fully replaces a dashboard.
type DashboardRequest struct {
	Name                   string `json:"name" binding:"required"`
	Slug                   string `json:"slug" binding:"required"`
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds"`
}

// Chart is the wire form of a chart.
type Chart struct {
	ID          string `json:"id"`
	DashboardID string `json:"dashboard_id"`
	Name        string `json:"name"`
	Query       string `json:"query"`
	SortOrder   int    `json:"sort_order"`
}

// ChartRequest creates or fully replaces a chart.
type ChartRequest struct {
	Name      string `json:"name" binding:"required"`
	Query     string `json:"query" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// Selector is the wire form of a selector.
type Selector struct {
	ID              string       `json:"id"`
	DashboardID     string       `json:"dashboard_id"`
	Name            string       `json:"name"`
	Label           string       `json:"label"`
	Type            string       `json:"type"`
	DefaultOperator string       `json:"default_operator"`
	IsRequired      bool         `json:"is_required"`
	SortOrder       int          `json:"sort_order"`
	ValueSource     *ValueSource `json:"value_source,omitempty"`
}

// SelectorRequest creates or fully replaces a selector.
type SelectorRequest struct {
	Name            string       `json:"name" binding:"required"`
	Label           string       `json:"label"`
	Type            string       `json:"type" binding:"required"`
	DefaultOperator string       `json:"default_operator"`
	IsRequired      bool         `json:"is_required"`
	SortOrder       int          `json:"sort_order"`
	ValueSource     *ValueSource `json:"value_source,omitempty"`
}

// ValueSource configures where a selector's options come from.
type ValueSource struct {
	Kind             string       `json:"kind"`
	Items            []OptionItem `json:"items,omitempty"`
	SourceTable      string       `json:"source_table,omitempty"`
	SourceColumn     string       `json:"source_column,omitempty"`
	LabelTable       string       `json:"label_table,omitempty"`
	LabelColumn      string       `json:"label_column,omitempty"`
	LabelValueColumn string       `json:"label_value_column,omitempty"`
}

// OptionItem is one selectable choice offered by a selector.
type OptionItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OptionsBatchRequest asks for the option lists of several selectors at once.
type OptionsBatchRequest struct {
	SelectorIDs []string `json:"selector_ids" binding:"required"`
}

// Mapping is the wire form of a selector-to-chart binding.
type Mapping struct {
	ID               string    `json:"id"`
	SelectorID       string    `json:"selector_id"`
	ChartID          string    `json:"chart_id"`
	TargetColumn     string    `json:"target_column"`
	TargetTable      string    `json:"target_table,omitempty"`
	OperatorOverride string    `json:"operator_override,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// MappingRequest binds a selector to a column on a chart.
type MappingRequest struct {
	ChartID          string `json:"chart_id" binding:"required"`
	TargetColumn     string `json:"target_column" binding:"required"`
	TargetTable      string `json:"target_table"`
	OperatorOverride string `json:"operator_override"`
}

// PreviewRequest tries one unsaved mapping against a chart's current query.
// The selector may be referenced by id or by name, or described inline
// through type and operator alone.
type PreviewRequest struct {
	SelectorID   string `json:"selector_id"`
	SelectorName string `json:"selector_name"`
	SelectorType string `json:"selector_type"`
	Operator     string `json:"operator"`
	TargetColumn string `json:"target_column" binding:"required"`
	TargetTable  string `json:"target_table"`
	SampleValue  any    `json:"sample_value"`
}

// RewriteResult holds a chart query before and after filter injection.
type RewriteResult struct {
	OriginalSQL string `json:"original_sql"`
	FilteredSQL string `json:"filtered_sql"`
	WhereClause string `json:"where_clause"`
}

// RenderRequest carries the viewer's filter values, keyed by selector name.
type RenderRequest struct {
	FilterValues map[string]any `json:"filter_values"`
}

// RenderResponse is the per-chart outcome of rendering a dashboard.
type RenderResponse struct {
	DashboardID string        `json:"dashboard_id"`
	Charts      []ChartResult `json:"charts"`
}

// ChartResult is one chart's executed result. A failed chart carries an
// error message instead of rows and does not affect its siblings.
type ChartResult struct {
	ChartID    string         `json:"chart_id"`
	Name       string         `json:"name"`
	Rewrite    *RewriteResult `json:"rewrite,omitempty"`
	Columns    []string       `json:"columns"`
	Rows       [][]string     `json:"rows"`
	RowCount   int            `json:"row_count"`
	Truncated  bool           `json:"truncated"`
	DurationMS int64          `json:"duration_ms"`
	Error      *string        `json:"error,omitempty"`
}

// SchemaTable describes one queryable table for editor autocomplete.
type SchemaTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}
