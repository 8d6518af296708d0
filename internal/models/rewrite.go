package models

// RewriteResult is the outcome of composing filters into one chart's query.
// Never persisted, always recomputed.
type RewriteResult struct {
	OriginalSQL string
	FilteredSQL string
	// WhereClause is the exact predicate group that was injected, empty when
	// the query was left untouched.
	WhereClause string
}
