package models

import "github.com/dashlite/dashlite/pkg/compose"

// Selector is a reusable filter control attached to a dashboard.
type Selector struct {
	ID          string
	DashboardID string
	// Name keys filter-value maps; identifier-safe and unique per dashboard.
	// Renaming a selector is a breaking change for persisted value maps.
	Name            string
	Label           string
	Type            compose.SelectorType
	DefaultOperator compose.Operator
	IsRequired      bool
	SortOrder       int
	// ValueSource is set for dropdown and multi_select selectors only.
	ValueSource *ValueSource
}

// ValueSourceKind tells where a selector's options come from.
type ValueSourceKind string

const (
	ValueSourceStatic   ValueSourceKind = "static"
	ValueSourceDatabase ValueSourceKind = "database"
)

// ValueSource configures the option list of a dropdown or multi_select
// selector. It is persisted as a JSON column, hence the tags.
type ValueSource struct {
	Kind ValueSourceKind `json:"kind"`

	// static options
	Items []OptionItem `json:"items,omitempty"`

	// database-backed options, with an optional label join
	SourceTable      string `json:"source_table,omitempty"`
	SourceColumn     string `json:"source_column,omitempty"`
	LabelTable       string `json:"label_table,omitempty"`
	LabelColumn      string `json:"label_column,omitempty"`
	LabelValueColumn string `json:"label_value_column,omitempty"`
}

// OptionItem is one selectable choice offered by a selector.
type OptionItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterValues is the per-request map of selector name to raw value.
type FilterValues map[string]any
