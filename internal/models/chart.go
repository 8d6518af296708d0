package models

import "time"

// Chart is a hand-written SQL query rendered on a dashboard.
type Chart struct {
	ID          string
	DashboardID string
	Name        string
	Query       string
	SortOrder   int
}

// ChartResult is the outcome of executing one chart's rewritten query.
// Failures stay local to the chart: Err is set and the tabular fields are
// empty, siblings are unaffected.
type ChartResult struct {
	ChartID   string
	Name      string
	Rewrite   *RewriteResult
	Columns   []string
	Rows      [][]string
	RowCount  int
	Truncated bool
	Duration  time.Duration
	Err       error
}

// SchemaTable describes one queryable table for editor autocomplete.
type SchemaTable struct {
	Name    string
	Columns []string
}
