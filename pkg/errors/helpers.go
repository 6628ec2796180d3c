package errors

import "net/http"

// Helper functions for common error types to simplify error creation

// NewValidationError creates a validation error
func NewValidationError(code, message string) *AppError {
	return New(code, ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(code, message string) *AppError {
	return New(code, ErrorTypeNotFound, message, http.StatusNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(code, message string) *AppError {
	return New(code, ErrorTypeConflict, message, http.StatusConflict)
}

// NewInfrastructureError creates an infrastructure error
func NewInfrastructureError(code, message string) *AppError {
	return New(code, ErrorTypeInfrastructure, message, http.StatusInternalServerError)
}

// NewInternalError creates an internal error
func NewInternalError(code, message string) *AppError {
	return New(code, ErrorTypeInternal, message, http.StatusInternalServerError)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(code, message string) *AppError {
	return New(code, ErrorTypeTimeout, message, http.StatusGatewayTimeout)
}

// WrapInfrastructureError wraps an existing error as infrastructure error
func WrapInfrastructureError(err error, code, message string) *AppError {
	return NewInfrastructureError(code, message).WithCause(err)
}

// WrapInternalError wraps an existing error as internal error
func WrapInternalError(err error, code, message string) *AppError {
	return NewInternalError(code, message).WithCause(err)
}

// Common error codes as constants
const (
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeTimeout          = "TIMEOUT"
	CodeCancelled        = "CANCELLED"
	CodeRateLimited      = "RATE_LIMITED"
)
