package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure independently of the transport that
// eventually reports it.
type ErrorCode string

const (
	// ErrCodeInvalid marks caller-supplied fields failing a precondition.
	ErrCodeInvalid ErrorCode = "INVALID"
	// ErrCodeNotFound marks operations referencing an unknown id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnavailable marks remote-backend transport failures. These are
	// absorbed by the storage gateway and never reach an operation's caller.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	// ErrCodePersistence marks local store write failures. There is no
	// further fallback; the operation fails.
	ErrCodePersistence ErrorCode = "PERSISTENCE"
	// ErrCodeUnauthorized marks requests rejected by the auth middleware.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeInternal marks everything else.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error is a classified domain error with an optional wrapped cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Common domain errors.
var (
	ErrTaskNotFound      = NewError(ErrCodeNotFound, "task not found")
	ErrNoteNotFound      = NewError(ErrCodeNotFound, "calendar note not found")
	ErrEmptyTitle        = NewError(ErrCodeInvalid, "task title must not be empty")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")
	ErrRemoteUnavailable = NewError(ErrCodeUnavailable, "remote backend unavailable")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
)

// IsDomainError reports whether err carries the given code.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
