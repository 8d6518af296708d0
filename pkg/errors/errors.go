package errors

import (
	"errors"
	"fmt"
)

// InvalidValueShapeError indicates a filter value does not match the shape
// its operator requires.
type InvalidValueShapeError struct {
	Operator string
	Reason   string
}

func NewInvalidValueShapeError(operator, reason string) *InvalidValueShapeError {
	return &InvalidValueShapeError{Operator: operator, Reason: reason}
}

func (e *InvalidValueShapeError) Error() string {
	return fmt.Sprintf("invalid value shape for operator %q: %s", e.Operator, e.Reason)
}

// IsInvalidValueShapeError checks if the error is an InvalidValueShapeError.
func IsInvalidValueShapeError(err error) bool {
	var e *InvalidValueShapeError
	return errors.As(err, &e)
}

// MalformedQueryError indicates a chart query the rewriter refuses to touch.
type MalformedQueryError struct {
	Reason string
}

func NewMalformedQueryError(reason string) *MalformedQueryError {
	return &MalformedQueryError{Reason: reason}
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("malformed query: %s", e.Reason)
}

// IsMalformedQueryError checks if the error is a MalformedQueryError.
func IsMalformedQueryError(err error) bool {
	var e *MalformedQueryError
	return errors.As(err, &e)
}

// MissingRequiredFilterError indicates a required selector had no active
// value when filters were applied.
type MissingRequiredFilterError struct {
	Selector string
}

func NewMissingRequiredFilterError(selector string) *MissingRequiredFilterError {
	return &MissingRequiredFilterError{Selector: selector}
}

func (e *MissingRequiredFilterError) Error() string {
	return fmt.Sprintf("required filter %q has no value", e.Selector)
}

// IsMissingRequiredFilterError checks if the error is a MissingRequiredFilterError.
func IsMissingRequiredFilterError(err error) bool {
	var e *MissingRequiredFilterError
	return errors.As(err, &e)
}

// ResourceNotFoundError indicates a resource was not found.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func NewDashboardNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("dashboard", id)
}

func NewChartNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("chart", id)
}

func NewSelectorNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("selector", id)
}

func NewMappingNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("mapping", id)
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// ValidationError indicates a request whose content breaks a configuration
// rule, like a selector name with forbidden characters or an operator the
// selector type cannot carry.
type ValidationError struct {
	Reason string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// ConflictError indicates the operation collides with existing state.
type ConflictError struct {
	Reason string
}

func NewConflictError(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

func NewDuplicateSelectorNameError(name string) *ConflictError {
	return NewConflictError(fmt.Sprintf("selector name %q already exists on this dashboard", name))
}

func NewDuplicateDashboardSlugError(slug string) *ConflictError {
	return NewConflictError(fmt.Sprintf("dashboard slug %q already exists", slug))
}

func NewDuplicateMappingError() *ConflictError {
	return NewConflictError("an identical mapping already exists for this selector")
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func IsConflictError(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
