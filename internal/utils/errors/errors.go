package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/fintoc-gateway/internal/model"
)

// Common error types.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrBadRequest    = errors.New("bad request")
	ErrConflict      = errors.New("resource conflict")
	ErrInternal      = errors.New("internal error")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnprocessable = errors.New("unprocessable request")
	ErrTooLarge      = errors.New("payload too large")
)

// AppError is an error raised by HTTP middleware, carrying its status and code.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    string
	Err        error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ToResponse converts an AppError to the API error body.
func (e *AppError) ToResponse() model.ErrorResponse {
	return model.ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details}
}

// Abort writes e and stops the handler chain.
func Abort(c *gin.Context, e *AppError) {
	c.AbortWithStatusJSON(e.StatusCode, e.ToResponse())
}

// Unauthorized creates an unauthorized error.
func Unauthorized(code, message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{Code: code, Message: message, StatusCode: http.StatusUnauthorized, Err: ErrUnauthorized}
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return &AppError{Code: "forbidden", Message: message, StatusCode: http.StatusForbidden, Err: ErrForbidden}
}

// BadRequest creates a bad request error.
func BadRequest(code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: http.StatusBadRequest, Err: ErrBadRequest}
}

// InvalidInput creates a bad request error for a request that failed binding.
// The binding error is reported in Details.
func InvalidInput(cause error) *AppError {
	e := BadRequest("invalid_input", "invalid request")
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// PayloadTooLarge creates a 413 error.
func PayloadTooLarge(limit int64) *AppError {
	return &AppError{
		Code:       "payload_too_large",
		Message:    fmt.Sprintf("request body exceeds %d bytes", limit),
		StatusCode: http.StatusRequestEntityTooLarge,
		Err:        ErrTooLarge,
	}
}

// Conflict creates a conflict error.
func Conflict(code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: http.StatusConflict, Err: ErrConflict}
}

// Unprocessable creates a 422 error.
func Unprocessable(code, message string) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: http.StatusUnprocessableEntity, Err: ErrUnprocessable}
}

// Internal creates an internal error.
func Internal(message string, err error) *AppError {
	return &AppError{Code: "internal_error", Message: message, StatusCode: http.StatusInternalServerError, Err: err}
}

// RateLimited creates a rate limited error.
func RateLimited(message string) *AppError {
	if message == "" {
		message = "too many requests"
	}
	return &AppError{Code: "rate_limit_exceeded", Message: message, StatusCode: http.StatusTooManyRequests, Err: ErrRateLimited}
}

// GetStatusCode returns the HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
