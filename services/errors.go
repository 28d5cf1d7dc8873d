package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both absent rows and rows owned by another tenant.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a soft-unique key is already taken.
	ErrConflict = errors.New("conflict")
	// ErrForbidden is returned when the caller's role does not allow the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Login for unknown users and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

type conflictError struct {
	message string
}

func (e *conflictError) Error() string {
	return e.message
}

func (e *conflictError) Is(target error) bool {
	return target == ErrConflict
}

func conflict(format string, args ...interface{}) error {
	return &conflictError{message: fmt.Sprintf(format, args...)}
}
