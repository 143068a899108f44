package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeTransportTimeout = "TRANSPORT_TIMEOUT"
	ErrCodeTransportFailure = "TRANSPORT_FAILURE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewTransportTimeoutError creates a TRANSPORT_TIMEOUT error for a collaborator
// call that exceeded its deadline. Surfaced distinctly so callers can offer retry.
func NewTransportTimeoutError(collaborator string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransportTimeout,
		Message: fmt.Sprintf("%s call timed out", collaborator),
		Status:  504,
		Err:     err,
	}
}

// NewTransportFailureError creates a TRANSPORT_FAILURE error for any other
// collaborator failure that could not be degraded to a fallback result.
func NewTransportFailureError(collaborator string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransportFailure,
		Message: fmt.Sprintf("%s call failed", collaborator),
		Status:  502,
		Err:     err,
	}
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsValidation reports whether err is a VALIDATION_ERROR.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsTransportTimeout reports whether err is a TRANSPORT_TIMEOUT error.
func IsTransportTimeout(err error) bool { return hasCode(err, ErrCodeTransportTimeout) }

// IsTransportFailure reports whether err is a TRANSPORT_FAILURE error.
func IsTransportFailure(err error) bool { return hasCode(err, ErrCodeTransportFailure) }
