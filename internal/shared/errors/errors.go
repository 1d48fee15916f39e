package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation error")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnavailable     = errors.New("artifacts unavailable")
	ErrInternal        = errors.New("internal error")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	HTTPStatus int               `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a not found error
func NotFound(resource string, id string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Code:       "NOT_FOUND",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]string{"resource": resource, "id": id},
	}
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Message:    message,
		Code:       "BAD_REQUEST",
		HTTPStatus: http.StatusBadRequest,
	}
}

// Validation creates a validation error with field details
func Validation(message string, details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		Code:       "VALIDATION_ERROR",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// UnknownCategory creates an error carrying every categorical field that failed
// resolution. Details maps field name to the rejected input value.
func UnknownCategory(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrUnknownCategory,
		Message:    "unknown category values",
		Code:       "UNKNOWN_CATEGORY",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// ArtifactsUnavailable signals that the model/vocabulary artifacts are not
// loaded. Every prediction fails with this until an explicit reload succeeds.
func ArtifactsUnavailable() *AppError {
	return &AppError{
		Err:        ErrUnavailable,
		Message:    "model artifacts not loaded",
		Code:       "ARTIFACTS_UNAVAILABLE",
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// PredictionFailed wraps an unexpected classifier fault. The underlying error
// is kept for logging but never surfaced to the caller.
func PredictionFailed(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "prediction failed",
		Code:       "PREDICTION_FAILED",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Internal creates an internal error
func Internal(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "internal server error",
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	if appErr, ok := err.(*AppError); ok {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "INTERNAL_ERROR",
		HTTPStatus: http.StatusInternalServerError,
	}
}
