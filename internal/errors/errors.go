package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNetwork indicates no response was received (timeout, connection
	// refused, DNS failure). Never retried automatically.
	ErrCodeNetwork ErrorCode = "network"
	// ErrCodeAuthExpired indicates a 401 on a non-auth endpoint; recoverable
	// through a token refresh exactly once.
	ErrCodeAuthExpired ErrorCode = "auth_expired"
	// ErrCodeAuthRejected indicates a terminal authentication failure: a 401
	// on an auth endpoint, a second 401 after retry, or a failed refresh.
	ErrCodeAuthRejected ErrorCode = "auth_rejected"
	// ErrCodeServer indicates any other non-2xx status.
	ErrCodeServer ErrorCode = "server"
	// ErrCodeValidation indicates a domain-specific rejection (e.g., duplicate
	// email on register), carrying the server-provided message.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates a client-side failure that is not the
	// backend's fault (marshaling, storage, configuration).
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and
// optional cause. It supports error wrapping and unwrapping for use with
// errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Network creates a new Network error.
func Network(message string) *AppError {
	return &AppError{Code: ErrCodeNetwork, Message: message}
}

// Networkf creates a new Network error with formatted message.
func Networkf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNetwork, Message: fmt.Sprintf(format, args...)}
}

// AuthExpired creates a new AuthExpired error.
func AuthExpired(message string) *AppError {
	return &AppError{Code: ErrCodeAuthExpired, Message: message}
}

// AuthRejected creates a new AuthRejected error.
func AuthRejected(message string) *AppError {
	return &AppError{Code: ErrCodeAuthRejected, Message: message}
}

// AuthRejectedf creates a new AuthRejected error with formatted message.
func AuthRejectedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeAuthRejected, Message: fmt.Sprintf(format, args...)}
}

// Server creates a new Server error.
func Server(message string) *AppError {
	return &AppError{Code: ErrCodeServer, Message: message}
}

// Serverf creates a new Server error with formatted message.
func Serverf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeServer, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNetwork checks if an error is a Network error.
func IsNetwork(err error) bool {
	return isCode(err, ErrCodeNetwork)
}

// IsAuthExpired checks if an error is an AuthExpired error.
func IsAuthExpired(err error) bool {
	return isCode(err, ErrCodeAuthExpired)
}

// IsAuthRejected checks if an error is an AuthRejected error.
func IsAuthRejected(err error) bool {
	return isCode(err, ErrCodeAuthRejected)
}

// IsServer checks if an error is a Server error.
func IsServer(err error) bool {
	return isCode(err, ErrCodeServer)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
