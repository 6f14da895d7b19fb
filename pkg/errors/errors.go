package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Identity resolution errors
	ErrCodeInvalidField   ErrorCode = "INVALID_FIELD"
	ErrCodeUserNotFound   ErrorCode = "USER_NOT_FOUND"
	ErrCodeAmbiguousMatch ErrorCode = "AMBIGUOUS_MATCH"

	// Issuance errors
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeMissingCapability  ErrorCode = "MISSING_CAPABILITY"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// HTTPStatus returns the status for any error, 500 for unstructured ones
func HTTPStatus(err error) int {
	return MapErrorCodeToHTTPStatus(GetCode(err))
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidField, ErrCodeServiceUnavailable:
		return http.StatusBadRequest
	case ErrCodeMissingCapability:
		return http.StatusForbidden
	case ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeAmbiguousMatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// InvalidField is returned when a lookup names a field that is not enabled for matching
func InvalidField(field string) *Error {
	return Newf(ErrCodeInvalidField, "Field is not enabled for fetching users (Field: %q)", field).
		WithDetail("field", field)
}

// NoSuchIdentity is returned when a lookup matched nobody
func NoSuchIdentity() *Error {
	return New(ErrCodeUserNotFound, "User not found!")
}

// AmbiguousMatch is returned when a lookup matched more than one identity
func AmbiguousMatch(field string, matches int) *Error {
	return New(ErrCodeAmbiguousMatch, "More than one user found.").
		WithDetail("field", field).
		WithDetail("matches", matches)
}

// ServiceUnavailable echoes the requested shortname
func ServiceUnavailable(shortname string) *Error {
	return Newf(ErrCodeServiceUnavailable, "Service is not available! (%s)", shortname).
		WithDetail("service", shortname)
}

// MissingCapability is returned when the caller may not act on the identity
func MissingCapability(capability string) *Error {
	return Newf(ErrCodeMissingCapability, "Missing capability: %s", capability).
		WithDetail("capability", capability)
}

// InvalidInput creates an "invalid input" error
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetail("field", field)
}

// InternalWrap wraps an internal error
func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}
