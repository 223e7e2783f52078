// Package apperrors classifies cfcalc failures and maps them to process exit
// codes. Every error type carries its cause so that errors.Is and errors.As
// reach the engine sentinels (cfrac.ErrDivisionByZero, context errors)
// through any number of wrappers.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess             = 0   // Indicates successful execution.
	ExitErrorGeneric        = 1   // Indicates a generic error.
	ExitErrorTimeout        = 2   // Indicates the operation timed out.
	ExitErrorMismatch       = 3   // Indicates a result mismatch between algorithms.
	ExitErrorConfig         = 4   // Indicates a configuration error.
	ExitErrorDivisionByZero = 5   // Indicates a division by a zero operand.
	ExitErrorCanceled       = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError reports an invalid flag, environment value or command-line
// expression. The application stops before any calculator runs.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError is the failure of one calculator on one expression.
// Its message is the cause's, so that output built from it reads the same as
// the engine error; Algorithm and Expression locate the failure.
type CalculationError struct {
	Algorithm  string
	Expression string
	Cause      error
}

func (e CalculationError) Error() string { return e.Cause.Error() }

// Unwrap returns the engine or context error behind the failure.
func (e CalculationError) Unwrap() error { return e.Cause }

// NewCalculationError tags cause with the calculator and expression that
// produced it. A nil cause yields nil, so it can wrap a calculator's return
// value unconditionally.
func NewCalculationError(algorithm, expression string, cause error) error {
	if cause == nil {
		return nil
	}
	return CalculationError{Algorithm: algorithm, Expression: expression, Cause: cause}
}

// ServerError is a failure of the HTTP server itself (listen, shutdown).
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a ServerError. cause may be nil.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError prefixes err with a formatted context message, keeping it
// reachable through errors.Is and errors.As. A nil err yields nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from a canceled or expired
// context rather than from the evaluation itself.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError rejects one request parameter. Message is meant for the
// client as is; Value holds the offending input when there was one.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
