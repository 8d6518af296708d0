package models

import (
	"time"

	"github.com/dashlite/dashlite/pkg/compose"
)

// Mapping binds one selector to one target column on one chart.
type Mapping struct {
	ID         string
	SelectorID string
	ChartID    string
	// TargetColumn receives the predicate. TargetTable qualifies it when the
	// chart's query joins more than one table carrying that column name.
	TargetColumn string
	TargetTable  string
	// OperatorOverride replaces the selector's default operator for this
	// mapping only. Empty means no override.
	OperatorOverride compose.Operator
	// CreatedAt orders fan-in predicates on a chart.
	CreatedAt time.Time
}

// EffectiveOperator resolves the operator this mapping applies.
func (m Mapping) EffectiveOperator(selectorDefault compose.Operator) compose.Operator {
	if m.OperatorOverride != "" {
		return m.OperatorOverride
	}
	return selectorDefault
}
