// Package errors defines the error taxonomy shared by the storage,
// controller and handler layers.
package errors

import (
	"fmt"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrDuplicate    = fmt.Errorf("duplicate")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrForbidden    = fmt.Errorf("forbidden")
	ErrUnauthorized = fmt.Errorf("unauthorized")
)

// Error carries a user-facing message on top of one of the sentinel kinds.
// Handlers match the kind with errors.Is and return Message verbatim.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound builds a not-found error with the given user-facing message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Duplicate builds a conflict error with the given user-facing message.
func Duplicate(message string) error {
	return &Error{Kind: ErrDuplicate, Message: message}
}

// InvalidInput builds a validation error with the given user-facing message.
func InvalidInput(message string) error {
	return &Error{Kind: ErrInvalidInput, Message: message}
}

// Forbidden builds an error for operations on disabled entities.
func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// Unauthorized builds an authentication failure error.
func Unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}
