package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Grading specific errors
	ErrQuestionNotFound   ErrorCode = "QUESTION_NOT_FOUND"
	ErrInvalidQuestion    ErrorCode = "INVALID_QUESTION"
	ErrRemoteServiceError ErrorCode = "REMOTE_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors

func NewValidationError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewQuestionNotFoundError(number int) *DomainError {
	return NewError(ErrQuestionNotFound, fmt.Sprintf("Question not found with number: %d", number), nil)
}

// NewInvalidQuestionError marks a question record that cannot be graded,
// e.g. one persisted without a model answer.
func NewInvalidQuestionError(message string) *DomainError {
	return NewError(ErrInvalidQuestion, message, nil)
}

func NewRemoteServiceError(err error) *DomainError {
	return NewError(ErrRemoteServiceError, "Failed to evaluate with remote service", err)
}
