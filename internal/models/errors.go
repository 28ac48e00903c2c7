package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is an error tagged with the HTTP status the error handler should use.
type AppError struct {
	Code    string
	Message string
	Status  int
	Data    any
	Err     error
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

// StatusCode returns the HTTP status for the error, defaulting to 500.
func (e *AppError) StatusCode() int {
	if e.Status == 0 {
		return fiber.StatusInternalServerError
	}
	return e.Status
}

// Predefined error constructors
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Status:  fiber.StatusNotFound,
	}
}

// NewValidationError builds a 422 error. data, when given, lists the offending fields.
func NewValidationError(message string, data ...any) *AppError {
	e := &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  fiber.StatusUnprocessableEntity,
	}
	if len(data) > 0 {
		e.Data = data[0]
	}
	return e
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  fiber.StatusForbidden,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Status:  fiber.StatusInternalServerError,
		Err:     err,
	}
}

// StatusOf resolves the HTTP status for any error returned by a handler.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// IsNotFound reports whether err resolves to a 404.
func IsNotFound(err error) bool {
	return err != nil && StatusOf(err) == fiber.StatusNotFound
}

// RespondWithError writes a standardized error response. Causes wrapped in an
// AppError are only exposed when exposeDetails is set.
func RespondWithError(c *fiber.Ctx, err error, exposeDetails bool) error {
	status := StatusOf(err)
	var response ErrorResponse

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		response = ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
			Data:    appErr.Data,
		}
		if exposeDetails && appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	case errors.As(err, &fiberErr):
		response = ErrorResponse{Message: fiberErr.Message}
	default:
		response = ErrorResponse{Message: "Internal server error", Code: CodeInternal}
		if exposeDetails {
			response.Details = err.Error()
		}
	}

	return c.Status(status).JSON(response)
}
