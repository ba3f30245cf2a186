package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/study-buddy-service/internal/validator"
)

// ===== NOT FOUND =====

type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// Is matches any NotFoundError for the same resource, so callers can compare
// against the sentinels below regardless of the id.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	return ok && t.ID == nil && t.Resource == e.Resource
}

func NewNotFoundError(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

var (
	ErrBadgeNotFound    = &NotFoundError{Resource: "badge"}
	ErrUserNotFound     = &NotFoundError{Resource: "user"}
	ErrQuestionNotFound = &NotFoundError{Resource: "question"}
	ErrSurveyNotFound   = &NotFoundError{Resource: "survey response"}
	ErrFeedbackNotFound = &NotFoundError{Resource: "feedback"}
	ErrPromptNotFound   = &NotFoundError{Resource: "prompt example"}
)

// ===== PERMISSION =====

type PermissionError struct {
	UserID     string
	ResourceID interface{}
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %v: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID interface{}, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// ===== VALIDATION =====

// NewValidationError builds a single business-rule failure in the same shape
// as tag validation failures
func NewValidationError(field, message string, value interface{}) *validator.ValidationError {
	return &validator.ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business",
	}
}

func validationFailed(field, message string, value interface{}) error {
	return validator.ValidationErrors{*NewValidationError(field, message, value)}
}

// ===== UPSTREAM =====

// UpstreamError is a failed call to the text-generation API. Message is safe
// to show to clients; Body is the truncated upstream reply.
type UpstreamError struct {
	Status  int
	Message string
	Body    string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ===== CONFLICT / AUTH =====

type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(resource, message string) *ConflictError {
	return &ConflictError{Resource: resource, Message: message}
}

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid uid or password")
	ErrLocalAuthDisabled  = errors.New("local accounts are disabled")
)

// IsNotFound reports whether err is any NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
