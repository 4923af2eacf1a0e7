package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeQuery represents query derivation errors (method names, builders, arguments)
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeMapping represents entity metadata errors
	ErrorTypeMapping ErrorType = "mapping"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeAudit represents auditing errors
	ErrorTypeAudit ErrorType = "audit"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType returns the category of the error
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Query Errors

// ErrArgumentStackUnderflow is returned when a builder needs more bound arguments than remain
type ErrArgumentStackUnderflow struct {
	*BaseError
	Property  string
	Required  int
	Available int
}

func NewArgumentStackUnderflow(property string, required, available int) *ErrArgumentStackUnderflow {
	return &ErrArgumentStackUnderflow{
		BaseError: NewBaseError(ErrorTypeQuery,
			fmt.Sprintf("argument stack underflow for %q: need %d, have %d", property, required, available), nil),
		Property:  property,
		Required:  required,
		Available: available,
	}
}

// ErrArgumentCountMismatch is returned when a method is invoked with the wrong number of arguments
type ErrArgumentCountMismatch struct {
	*BaseError
	Method   string
	Expected int
	Actual   int
}

func NewArgumentCountMismatch(method string, expected, actual int) *ErrArgumentCountMismatch {
	return &ErrArgumentCountMismatch{
		BaseError: NewBaseError(ErrorTypeQuery,
			fmt.Sprintf("method %s expects %d arguments, got %d", method, expected, actual), nil),
		Method:   method,
		Expected: expected,
		Actual:   actual,
	}
}

// ErrUnsupportedQueryMethod is returned when no builder is registered for a comparison keyword
type ErrUnsupportedQueryMethod struct {
	*BaseError
	Property string
	Keyword  string
}

func NewUnsupportedQueryMethod(property, keyword string) *ErrUnsupportedQueryMethod {
	return &ErrUnsupportedQueryMethod{
		BaseError: NewBaseError(ErrorTypeQuery,
			fmt.Sprintf("unsupported query method: no builder for %s on %q", keyword, property), nil),
		Property: property,
		Keyword:  keyword,
	}
}

// ErrInvalidMethodName is returned when a method name cannot be parsed
type ErrInvalidMethodName struct {
	*BaseError
	Method string
	Reason string
}

func NewInvalidMethodName(method, reason string) *ErrInvalidMethodName {
	return &ErrInvalidMethodName{
		BaseError: NewBaseError(ErrorTypeQuery, fmt.Sprintf("invalid method name %q: %s", method, reason), nil),
		Method:    method,
		Reason:    reason,
	}
}

// ErrInvalidFilter is returned when a predicate cannot be constructed or rendered
type ErrInvalidFilter struct {
	*BaseError
	Property string
	Reason   string
}

func NewInvalidFilter(property, reason string) *ErrInvalidFilter {
	return &ErrInvalidFilter{
		BaseError: NewBaseError(ErrorTypeQuery, fmt.Sprintf("invalid filter on %q: %s", property, reason), nil),
		Property:  property,
		Reason:    reason,
	}
}

// Mapping Errors

// ErrEntityNotMapped is returned when an entity name has no registered metadata
type ErrEntityNotMapped struct {
	*BaseError
	Entity string
}

func NewEntityNotMapped(entity string) *ErrEntityNotMapped {
	return &ErrEntityNotMapped{
		BaseError: NewBaseError(ErrorTypeMapping, fmt.Sprintf("entity not mapped: %s", entity), nil),
		Entity:    entity,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// Audit Errors

// ErrAuditHandlerMissing is returned when an auditing listener is built without a handler
var ErrAuditHandlerMissing = NewBaseError(ErrorTypeAudit, "auditing handler factory must not be nil", nil)

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		var typed interface{ ErrorType() ErrorType }
		if !stderrors.As(err, &typed) {
			return false
		}
		if typed.ErrorType() == errType {
			return true
		}
		err = stderrors.Unwrap(typed.(error))
	}
	return false
}

// IsUsageError reports whether err signals a mismatch between a method signature and its arguments
func IsUsageError(err error) bool {
	var underflow *ErrArgumentStackUnderflow
	var mismatch *ErrArgumentCountMismatch
	var invalid *ErrInvalidFilter
	return stderrors.As(err, &underflow) || stderrors.As(err, &mismatch) || stderrors.As(err, &invalid)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Derivation and mapping errors are programming errors
	if IsErrorType(err, ErrorTypeQuery) || IsErrorType(err, ErrorTypeMapping) || IsErrorType(err, ErrorTypeConfig) {
		return false
	}
	// Graph connection errors are retryable
	var conn *ErrGraphConnectionFailed
	return stderrors.As(err, &conn)
}
