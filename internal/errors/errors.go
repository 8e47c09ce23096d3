// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// overflow, allocation, concurrency, etc.) and for carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types implement the Unwrap() method to support errors.Is() and errors.As().
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result mismatch between strategies.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorOverflow = 5   // Indicates an exponent or term-count overflow.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

var (
	// ErrIncompatibleMonomial is returned when a packed monomial does not lie
	// within the bounds-table entry of the requested dimension count.
	ErrIncompatibleMonomial = errors.New("monomial is not compatible with the symbol set")

	// ErrSymbolMismatch is returned when two operands are not defined over the
	// same ordered symbol set.
	ErrSymbolMismatch = errors.New("operands have different symbol sets")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError encapsulates a multiplication error while preserving the
// original cause. This allows for structured error handling and inspection
// of what went wrong inside the engine.
type CalculationError struct {
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the error message from the underlying cause.
func (e CalculationError) Error() string { return e.Cause.Error() }

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e CalculationError) Unwrap() error { return e.Cause }

// OverflowError reports that a multiplication cannot be represented: either
// the summed exponent range of some dimension leaves the Kronecker bounds, or
// the number of candidate terms exceeds the container's index capacity.
// It is always raised before any destination state is created.
type OverflowError struct {
	// Op names the operation that detected the overflow ("encode", "bounds", ...).
	Op string
	// Dimension is the offending dimension index, or -1 when not applicable.
	Dimension int
	// Detail describes the offending range or size.
	Detail string
}

// Error returns a descriptive message for the overflow.
func (e *OverflowError) Error() string {
	if e.Dimension >= 0 {
		return fmt.Sprintf("%s: overflow in dimension %d: %s", e.Op, e.Dimension, e.Detail)
	}
	return fmt.Sprintf("%s: overflow: %s", e.Op, e.Detail)
}

// NewOverflowError creates a new OverflowError.
//
// Parameters:
//   - op: The operation which detected the overflow.
//   - dim: The dimension index, or -1.
//   - format: A format string for the detail message.
//   - a: Arguments for the format string.
//
// Returns:
//   - error: A new *OverflowError.
func NewOverflowError(op string, dim int, format string, a ...any) error {
	return &OverflowError{Op: op, Dimension: dim, Detail: fmt.Sprintf(format, a...)}
}

// AllocationError reports a failure to size a container or a flat array,
// typically because the requested capacity exceeds the supported maximum.
type AllocationError struct {
	// Requested is the number of slots or buckets that were requested.
	Requested uint64
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a descriptive message for the allocation failure.
func (e *AllocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("allocation of %d slots failed: %v", e.Requested, e.Cause)
	}
	return fmt.Sprintf("allocation of %d slots failed", e.Requested)
}

// Unwrap returns the underlying cause.
func (e *AllocationError) Unwrap() error { return e.Cause }

// NewAllocationError creates a new AllocationError.
func NewAllocationError(requested uint64, cause error) error {
	return &AllocationError{Requested: requested, Cause: cause}
}

// ConcurrencyError reports a failure inside the worker machinery itself, such
// as a panic recovered from a worker goroutine.
type ConcurrencyError struct {
	// Worker is the index of the failing worker.
	Worker int
	// Cause is the underlying error.
	Cause error
}

// Error returns a descriptive message for the concurrency failure.
func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("worker %d failed: %v", e.Worker, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ConcurrencyError) Unwrap() error { return e.Cause }

// ServerError represents errors that occur in the metrics HTTP server component.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message for a ServerError.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsOverflow reports whether err is, or wraps, an *OverflowError.
func IsOverflow(err error) bool {
	var oe *OverflowError
	return errors.As(err, &oe)
}

// ValidationError represents an error due to invalid input validation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional, may be nil).
	Value any
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
