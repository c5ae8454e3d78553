// Package apperr defines the error taxonomy shared by services, middleware and
// handlers. Each Kind maps to exactly one HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindAuthorization
	KindPermissions
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindAuthorization:
		return "authorization"
	case KindPermissions:
		return "permissions"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindPermissions:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, logged but never sent to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidRequest reports malformed or missing input (400).
func InvalidRequest(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

// Authorization reports a missing, invalid or expired credential (401).
func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// Permissions reports an authenticated caller lacking the required role (403).
func Permissions(msg string) *Error {
	return &Error{Kind: KindPermissions, Message: msg}
}

// NotFound reports an absent entity, or one the caller does not own (404).
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a write that lost a race with another request (409).
func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

// RateLimited reports a client exceeding its request budget (429).
func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// Internal wraps an unexpected fault. The message is not shown to clients.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf returns the kind of err, or KindInternal for errors outside the
// taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
