// Package errors provides custom error types for dashlite.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping.
//
// # Error Types Overview
//
//	┌───────────────────────────┬────────┬─────────────────────────────────────┐
//	│ Error Type                │ HTTP   │ Description                         │
//	├───────────────────────────┼────────┼─────────────────────────────────────┤
//	│ InvalidValueShapeError    │ 400    │ Value doesn't fit operator arity    │
//	│ MalformedQueryError       │ 400    │ Chart SQL the rewriter refuses      │
//	│ ValidationError           │ 400    │ Configuration rule broken           │
//	│ MissingRequiredFilterError│ 422    │ Required selector left empty        │
//	│ ResourceNotFoundError     │ 404    │ Requested resource doesn't exist    │
//	│ ConflictError             │ 409    │ Duplicate name or mapping           │
//	└───────────────────────────┴────────┴─────────────────────────────────────┘
//
// # InvalidValueShapeError
//
// Raised by the predicate builder when a filter value does not match its
// operator's requirements: a scalar where "in" expects a list, a "between"
// missing one of its two endpoints, an empty list, a nil scalar.
//
// Constructor:
//   - NewInvalidValueShapeError(operator, reason string)
//
// # MalformedQueryError
//
// Raised by the query rewriter when a chart query cannot be handled safely:
// unbalanced parentheses, an unterminated string literal, multiple
// statements, or a statement that is not a SELECT.
//
// Constructor:
//   - NewMalformedQueryError(reason string)
//
// # ValidationError
//
// Raised by the services when a request breaks a configuration rule: a
// selector name with forbidden characters, an operator the selector type
// cannot carry, or a mapping that crosses dashboards.
//
// Constructor:
//   - NewValidationError(format string, args ...any)
//
// # MissingRequiredFilterError
//
// Raised during Apply when a selector marked required has no active value.
// Carries the selector name so the UI can point at the empty control.
//
// Constructor:
//   - NewMissingRequiredFilterError(selector string)
//
// # ResourceNotFoundError
//
// Indicates a requested resource was not found in the store.
//
// Constructors:
//   - NewResourceNotFoundError(kind, id string) - Generic resource not found
//   - NewDashboardNotFoundError(id string)
//   - NewChartNotFoundError(id string)
//   - NewSelectorNotFoundError(id string)
//   - NewMappingNotFoundError(id string)
//
// # ConflictError
//
// Indicates the operation collides with existing state: a selector name
// reused within a dashboard, or a mapping duplicating an existing
// (selector, chart, column, table) tuple.
//
// Constructors:
//   - NewConflictError(reason string)
//   - NewDuplicateSelectorNameError(name string)
//   - NewDuplicateMappingError()
//
// # Type Checking Pattern
//
// All error types provide Is* helper functions that use errors.As
// for proper error chain unwrapping:
//
//	func IsConflictError(err error) bool {
//	    var e *ConflictError
//	    return errors.As(err, &e)
//	}
//
// This allows checking wrapped errors:
//
//	wrapped := fmt.Errorf("saving mapping: %w", errors.NewDuplicateMappingError())
//	errors.IsConflictError(wrapped) // returns true
//
// # Handler Error Mapping
//
// Handlers typically map errors to HTTP status codes:
//
//	switch {
//	case errors.IsResourceNotFoundError(err):
//	    c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
//	case errors.IsConflictError(err):
//	    c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
//	case errors.IsMissingRequiredFilterError(err):
//	    c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
//	case errors.IsInvalidValueShapeError(err), errors.IsMalformedQueryError(err),
//	    errors.IsValidationError(err):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
//	}
package errors
