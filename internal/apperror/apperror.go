// Package apperror defines the application's error taxonomy.
//
// SENTINEL ERRORS + WRAPPER:
// Each category gets a package-level sentinel (ErrValidation, ErrConflict,
// ...) that the rest of the codebase matches with errors.Is(). The AppError
// wrapper carries the sentinel plus a human-readable message, so the HTTP
// layer can pick a status code from the sentinel and a response body from
// the message without ever exposing internal error strings.
//
// THE CATEGORIES:
//   - Validation:   missing/malformed input — the client can fix and retry
//   - Conflict:     a uniqueness constraint rejected a write (duplicate email)
//   - Unauthorized: bad login credentials — deliberately one category for
//     "no such user" and "wrong password", so responses can't be used to
//     enumerate accounts
//   - Forbidden:    a presented token failed verification
//   - NotFound:     a lookup found nothing (internal use; login translates
//     this to Unauthorized before it reaches a client)
//   - Dependency:   the database or file storage failed — opaque to the
//     client, details only in server logs, never retried automatically
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrDependency   = errors.New("dependency failure")
)

type AppError struct {
	Err     error  // sentinel category (one of the Err* values above)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports that a store uniqueness constraint rejected a write.
// HTTP handlers map this to 409 Conflict.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized reports a failed login. The message is the same regardless
// of WHY the login failed — callers log the real cause separately.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid credentials",
	}
}

// Forbidden returns an AppError indicating the caller's token was rejected.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Dependency wraps a store/storage fault. The message names the operation
// (for logs); the HTTP layer replaces it with a generic body so internal
// detail never reaches a client.
func Dependency(op string, err error) *AppError {
	return &AppError{
		Err:     ErrDependency,
		Message: fmt.Sprintf("%s: %v", op, err),
	}
}
