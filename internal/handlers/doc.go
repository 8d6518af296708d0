// Package handlers implements the HTTP API layer for dashlite.
//
// This package contains HTTP handlers that expose dashboard management,
// filter composition and chart execution via a RESTful API. Handlers
// delegate business logic to the services layer and focus on request
// validation, response formatting, and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request validation                                           │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  Dashboard │ Chart │ Selector │ Mapping │ Option                │
//	│  Composer  │ Executor │ Export                                  │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Handler Structure
//
// All handlers are methods on a single Handler struct that holds service
// dependencies. Routes are registered through:
//
//	handler.RegisterRoutes(router)
//
// # API Endpoints
//
// Dashboard Endpoints (dashboards.go, render.go):
//
//	┌────────┬───────────────────────────┬──────────────────────────────┐
//	│ Method │ Endpoint                  │ Description                  │
//	├────────┼───────────────────────────┼──────────────────────────────┤
//	│ GET    │ /dashboards               │ List dashboards              │
//	│ POST   │ /dashboards               │ Create a dashboard           │
//	│ GET    │ /dashboards/{id}          │ Get dashboard by id or slug  │
//	│ PUT    │ /dashboards/{id}          │ Update a dashboard           │
//	│ DELETE │ /dashboards/{id}          │ Delete with charts/selectors │
//	│ GET    │ /dashboards/{id}/render   │ Render, filters in query     │
//	│ POST   │ /dashboards/{id}/render   │ Render, filters in body      │
//	└────────┴───────────────────────────┴──────────────────────────────┘
//
// Chart Endpoints (charts.go):
//
//	┌────────┬────────────────────────────┬─────────────────────────────┐
//	│ Method │ Endpoint                   │ Description                 │
//	├────────┼────────────────────────────┼─────────────────────────────┤
//	│ GET    │ /dashboards/{id}/charts    │ List charts of a dashboard  │
//	│ POST   │ /dashboards/{id}/charts    │ Create a chart (probed)     │
//	│ GET    │ /charts/{id}               │ Get chart                   │
//	│ PUT    │ /charts/{id}               │ Update chart (re-probed)    │
//	│ DELETE │ /charts/{id}               │ Delete chart and mappings   │
//	│ GET    │ /charts/{id}/columns       │ Columns the query yields    │
//	│ GET    │ /charts/{id}/tables        │ Dataset tables it touches   │
//	│ GET    │ /charts/{id}/export        │ Download as xlsx or CSV     │
//	│ POST   │ /charts/{id}/filter-preview│ Preview one unsaved mapping │
//	│ GET    │ /schema/tables             │ Tables for autocomplete     │
//	└────────┴────────────────────────────┴─────────────────────────────┘
//
// Selector Endpoints (selectors.go):
//
//	┌────────┬────────────────────────────┬─────────────────────────────┐
//	│ Method │ Endpoint                   │ Description                 │
//	├────────┼────────────────────────────┼─────────────────────────────┤
//	│ GET    │ /dashboards/{id}/selectors │ List selectors              │
//	│ POST   │ /dashboards/{id}/selectors │ Create a selector           │
//	│ GET    │ /selectors/{id}            │ Get selector                │
//	│ PUT    │ /selectors/{id}            │ Update selector             │
//	│ DELETE │ /selectors/{id}            │ Delete with its mappings    │
//	│ GET    │ /selectors/{id}/options    │ Option list of one selector │
//	│ POST   │ /selectors/options:batch   │ Option lists for many       │
//	└────────┴────────────────────────────┴─────────────────────────────┘
//
// Mapping Endpoints (mappings.go):
//
//	┌────────┬────────────────────────────┬─────────────────────────────┐
//	│ Method │ Endpoint                   │ Description                 │
//	├────────┼────────────────────────────┼─────────────────────────────┤
//	│ GET    │ /selectors/{id}/mappings   │ Mappings in creation order  │
//	│ POST   │ /selectors/{id}/mappings   │ Bind selector to a column   │
//	│ DELETE │ /mappings/{id}             │ Unbind                      │
//	└────────┴────────────────────────────┴─────────────────────────────┘
//
// # Render Handler
//
// GET /dashboards/{id}/render?stage=WON&stage=LOST&region=emea
//
// Every query parameter is taken as a selector name with its value;
// repeated parameters form a list. POST carries the same information as
// JSON, which preserves value types:
//
//	{ "filter_values": { "stage": ["WON", "LOST"], "region": "emea" } }
//
// Response, per chart and failure-isolated:
//
//	{
//	    "dashboard_id": "...",
//	    "charts": [
//	        {
//	            "chart_id": "...",
//	            "name": "Deals by stage",
//	            "rewrite": {
//	                "original_sql": "SELECT ...",
//	                "filtered_sql": "SELECT ... WHERE (stage IN ('WON', 'LOST')) ...",
//	                "where_clause": "(stage IN ('WON', 'LOST'))"
//	            },
//	            "columns": ["stage", "c"],
//	            "rows": [["WON", "42"]],
//	            "row_count": 1,
//	            "truncated": false,
//	            "duration_ms": 3
//	        },
//	        { "chart_id": "...", "name": "Broken", "error": "executing query: ..." }
//	    ]
//	}
//
// # Preview Handler
//
// POST /charts/{id}/filter-preview - Tries one hypothetical mapping before
// it is saved. The selector may be referenced by id or name, or described
// inline by type and operator. The sample value is illustrative only and is
// never checked against the selector's real value domain.
//
// Request:
//
//	{
//	    "selector_name": "stage",
//	    "operator": "in",
//	    "target_column": "stage",
//	    "sample_value": ["WON", "LOST"]
//	}
//
// Response:
//
//	{
//	    "original_sql": "SELECT stage, COUNT(*) AS c FROM deals GROUP BY stage",
//	    "filtered_sql": "SELECT stage, COUNT(*) AS c FROM deals WHERE (stage IN ('WON', 'LOST')) GROUP BY stage",
//	    "where_clause": "(stage IN ('WON', 'LOST'))"
//	}
//
// # Error Handling
//
// Handlers use a consistent error response format:
//
//	{ "error": "error message" }
//
// HTTP Status Code Mapping:
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ ValidationError             │ 400    │ Config rule violated         │
//	│ InvalidValueShapeError      │ 400    │ Value arity/type mismatch    │
//	│ MalformedQueryError         │ 400    │ No safe insertion point      │
//	│ ResourceNotFoundError       │ 404    │ Unknown id or slug           │
//	│ ConflictError               │ 409    │ Duplicate name/slug/mapping  │
//	│ MissingRequiredFilterError  │ 422    │ Required selector inactive   │
//	│ Internal error              │ 500    │ Unexpected service errors    │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
//
// # Model Conversion
//
// Handlers convert between internal models and API types using extension
// functions defined in api/v1/extension.go:
//
//   - v1.NewDashboardFromModel(models.Dashboard) → v1.Dashboard
//   - v1.NewSelectorFromModel(models.Selector) → v1.Selector
//   - v1.NewRewriteResultFromModel(models.RewriteResult) → v1.RewriteResult
//   - v1.NewRenderResponseFromModels(id, []models.ChartResult) → v1.RenderResponse
//
// # Framework
//
// The package uses the Gin web framework. Routes are registered by hand in
// RegisterRoutes, there is no generated routing layer.
package handlers
