package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes for every failure kind the engine can report.
const (
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeProfileRequired     = "PROFILE_REQUIRED"
	CodeNotFound            = "NOT_FOUND"
	CodePrivateAccessDenied = "PRIVATE_ACCESS_DENIED"
	CodeAlreadyReacted      = "ALREADY_REACTED"
	CodeCommentForbidden    = "COMMENT_FORBIDDEN"
	CodeSelfFollow          = "SELF_FOLLOW"
	CodeAlreadyFollowing    = "ALREADY_FOLLOWING"
	CodeNotFollowing        = "NOT_FOLLOWING"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
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

// CodeOf returns the machine code carried by err, or empty for plain errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Predefined error constructors
func NewAlreadyExistsError(identity string) *AppError {
	return &AppError{
		Code:    CodeAlreadyExists,
		Message: fmt.Sprintf("profile already exists for %s", identity),
	}
}

func NewProfileRequiredError(identity string) *AppError {
	return &AppError{
		Code:    CodeProfileRequired,
		Message: fmt.Sprintf("identity %s has no profile", identity),
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewPrivateAccessDeniedError(postID uint64) *AppError {
	return &AppError{
		Code:    CodePrivateAccessDenied,
		Message: fmt.Sprintf("post %d is private", postID),
	}
}

func NewAlreadyReactedError(postID uint64) *AppError {
	return &AppError{
		Code:    CodeAlreadyReacted,
		Message: fmt.Sprintf("already reacted to post %d", postID),
	}
}

func NewCommentForbiddenError(postID uint64) *AppError {
	return &AppError{
		Code:    CodeCommentForbidden,
		Message: fmt.Sprintf("commenting on post %d is not allowed", postID),
	}
}

func NewSelfFollowError() *AppError {
	return &AppError{
		Code:    CodeSelfFollow,
		Message: "cannot follow yourself",
	}
}

func NewAlreadyFollowingError(target string) *AppError {
	return &AppError{
		Code:    CodeAlreadyFollowing,
		Message: fmt.Sprintf("already following %s", target),
	}
}

func NewNotFollowingError(target string) *AppError {
	return &AppError{
		Code:    CodeNotFollowing,
		Message: fmt.Sprintf("not following %s", target),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
