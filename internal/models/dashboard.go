package models

// Dashboard groups charts and the selectors that filter them.
type Dashboard struct {
	ID   string
	Name string
	// Slug is the URL-safe handle viewers open the dashboard by.
	Slug string
	// RefreshIntervalSeconds bounds the per-chart execution timeout at
	// render time.
	RefreshIntervalSeconds int
}
