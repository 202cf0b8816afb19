// Package errors provides centralized error definitions and error handling utilities
// for linefilter. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures in a specific part of the engine:
//   - PatternError: a raw pattern rejected at input time
//   - CompositionError: the combined alternation failed to compile
//   - TemplateFormatWarning: a date format fell back to the default
//   - PersistenceError: the per-document store could not be read or written
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - AlreadyExistsError: resource already exists
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewPatternError("pattern does not compile", cause).WithPattern("[")
//
//	if errors.Is(err, errors.ErrInvalidPattern) { ... }
//
//	var compErr *errors.CompositionError
//	if errors.As(err, &compErr) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Filter-related sentinel errors
var (
	// ErrInvalidPattern indicates that a pattern does not compile.
	ErrInvalidPattern = New("invalid pattern")
	// ErrCompositionFailed indicates that the combined matcher could not be built.
	ErrCompositionFailed = New("filter composition failed")
	// ErrTemplateFormat indicates that a template date format could not be applied.
	ErrTemplateFormat = New("template format not applicable")
)

// Storage-related sentinel errors
var (
	// ErrPersistence indicates that the filter store could not be read or written.
	ErrPersistence = New("persistence failed")
	// ErrSavedItemNotFound indicates that a saved pattern could not be found.
	ErrSavedItemNotFound = New("saved pattern not found")
	// ErrDocumentUnreadable indicates that a document's lines could not be read.
	ErrDocumentUnreadable = New("document unreadable")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// FilterError is the base interface for all linefilter errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type FilterError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// formatWithContext renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) formatWithContext(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// PatternError is returned when a pattern is rejected before it enters a
// filter set.
//
// Example:
//
//	err := errors.NewPatternError("pattern does not compile", syntaxErr).
//		WithPattern("{{today}}[").WithResolved("2024-01-02[")
//	fmt.Println(err) // "pattern error [pattern={{today}}[, resolved=2024-01-02[]: pattern does not compile: ..."
type PatternError struct {
	baseError
	Pattern  string
	Resolved string
}

// NewPatternError creates a new PatternError.
func NewPatternError(message string, cause error) *PatternError {
	return &PatternError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPattern adds the raw pattern to the error context.
func (e *PatternError) WithPattern(p string) *PatternError {
	e.Pattern = p
	return e
}

// WithResolved adds the template-expanded pattern to the error context.
func (e *PatternError) WithResolved(p string) *PatternError {
	e.Resolved = p
	return e
}

// Error returns the formatted error message.
func (e *PatternError) Error() string {
	var parts []string
	if e.Pattern != "" {
		parts = append(parts, fmt.Sprintf("pattern=%s", e.Pattern))
	}
	if e.Resolved != "" && e.Resolved != e.Pattern {
		parts = append(parts, fmt.Sprintf("resolved=%s", e.Resolved))
	}
	return e.formatWithContext("pattern error", parts)
}

// Is checks if this error matches the target.
func (e *PatternError) Is(target error) bool {
	if _, ok := target.(*PatternError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidPattern) {
		return true
	}
	return e.baseError.Is(target)
}

// CompositionError is returned when the alternation of all active patterns
// fails to compile even though each pattern was accepted on its own.
//
// Example:
//
//	err := errors.NewCompositionError(syntaxErr).WithPatternCount(3).WithOffender("a{2,1}")
type CompositionError struct {
	baseError
	PatternCount int
	// Offender is the first pattern found to fail on its own. Empty when
	// every pattern compiles alone and only the combination fails.
	Offender string
}

// NewCompositionError creates a new CompositionError.
func NewCompositionError(cause error) *CompositionError {
	return &CompositionError{
		baseError: baseError{
			message:    "could not combine active filters",
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPatternCount records how many patterns took part in the composition.
func (e *CompositionError) WithPatternCount(n int) *CompositionError {
	e.PatternCount = n
	return e
}

// WithOffender records the sub-pattern identified as invalid.
func (e *CompositionError) WithOffender(p string) *CompositionError {
	e.Offender = p
	return e
}

// Error returns the formatted error message.
func (e *CompositionError) Error() string {
	var parts []string
	if e.PatternCount > 0 {
		parts = append(parts, fmt.Sprintf("patterns=%d", e.PatternCount))
	}
	if e.Offender != "" {
		parts = append(parts, fmt.Sprintf("offender=%s", e.Offender))
	}
	return e.formatWithContext("composition error", parts)
}

// Is checks if this error matches the target.
func (e *CompositionError) Is(target error) bool {
	if _, ok := target.(*CompositionError); ok {
		return true
	}
	if errors.Is(target, ErrCompositionFailed) {
		return true
	}
	return e.baseError.Is(target)
}

// TemplateFormatWarning is reported when a recognized template variable
// carries a format that cannot be applied. Resolution still succeeds using
// the default format.
type TemplateFormatWarning struct {
	baseError
	Variable string
	Format   string
	Fallback string
}

// NewTemplateFormatWarning creates a new TemplateFormatWarning.
func NewTemplateFormatWarning(variable, format, fallback string, cause error) *TemplateFormatWarning {
	return &TemplateFormatWarning{
		baseError: baseError{
			message:    fmt.Sprintf("format %q not applicable, using %q", format, fallback),
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		Variable: variable,
		Format:   format,
		Fallback: fallback,
	}
}

// Error returns the formatted error message.
func (e *TemplateFormatWarning) Error() string {
	var parts []string
	if e.Variable != "" {
		parts = append(parts, fmt.Sprintf("variable=%s", e.Variable))
	}
	return e.formatWithContext("template warning", parts)
}

// Is checks if this error matches the target.
func (e *TemplateFormatWarning) Is(target error) bool {
	if _, ok := target.(*TemplateFormatWarning); ok {
		return true
	}
	if errors.Is(target, ErrTemplateFormat) {
		return true
	}
	return e.baseError.Is(target)
}

// PersistenceError represents a failure of the per-document filter store.
//
// Example:
//
//	err := errors.NewPersistenceError("set", cause).WithDocumentID("/notes/todo.md")
type PersistenceError struct {
	baseError
	Operation  string
	DocumentID string
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(operation string, cause error) *PersistenceError {
	return &PersistenceError{
		baseError: baseError{
			message:    fmt.Sprintf("%s failed", operation),
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: false,
		},
		Operation: operation,
	}
}

// WithDocumentID adds the document identity to the error context.
func (e *PersistenceError) WithDocumentID(id string) *PersistenceError {
	e.DocumentID = id
	return e
}

// Error returns the formatted error message.
func (e *PersistenceError) Error() string {
	var parts []string
	if e.DocumentID != "" {
		parts = append(parts, fmt.Sprintf("document=%s", e.DocumentID))
	}
	return e.formatWithContext("persistence error", parts)
}

// Is checks if this error matches the target.
func (e *PersistenceError) Is(target error) bool {
	if _, ok := target.(*PersistenceError); ok {
		return true
	}
	if errors.Is(target, ErrPersistence) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("saved pattern", "work")
//	fmt.Println(err) // "saved pattern 'work' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError represents a resource that already exists.
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Error returns the formatted error message.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("saved pattern name cannot be empty").WithField("name")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.formatWithContext("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var filterErr FilterError
	if As(err, &filterErr) {
		return filterErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    notify(err.Error())
//	} else {
//	    notify("filtering did not activate")
//	    logger.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var filterErr FilterError
	if As(err, &filterErr) {
		return filterErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement FilterError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var filterErr FilterError
	if As(err, &filterErr) {
		return filterErr.Severity()
	}
	return SeverityError
}

// IsWarning reports whether err is non-fatal: the operation completed and the
// error only describes a degraded outcome.
func IsWarning(err error) bool {
	return err != nil && GetSeverity(err) <= SeverityWarning
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this preserves the FilterError interface.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
