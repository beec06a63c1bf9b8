package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the standard error envelope. Every failed request carries a
// single message field.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ReasonResponse is the envelope for model-validation failures.
type ReasonResponse struct {
	Reason string `json:"reason"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
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

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// MissingReferenceError reports a submitted foreign id that does not resolve
// to an existing row. Kind is the entity name as it appears in the message
// ("treatment", "hurt", "update", "bodypart", "treatmenttype").
type MissingReferenceError struct {
	Kind string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("request contains a %s id for a non-existent %s", e.Kind, e.Kind)
}

func NewMissingReferenceError(kind string) *MissingReferenceError {
	return &MissingReferenceError{Kind: kind}
}

// RespondWithError writes the standardized error envelope.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	if appErr, ok := err.(*AppError); ok {
		return c.Status(status).JSON(ErrorResponse{Message: appErr.Message})
	}
	return c.Status(status).JSON(ErrorResponse{Message: err.Error()})
}

// RespondWithReason writes the model-validation envelope.
func RespondWithReason(c *fiber.Ctx, status int, reason string) error {
	return c.Status(status).JSON(ReasonResponse{Reason: reason})
}
