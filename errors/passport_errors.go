package errors

import (
	"fmt"
	"net/http"
)

// Error is the broker's request-facing error: an HTTP status plus the
// message rendered in the {status, error} envelope. Server-side detail is
// logged where the error originates and never leaks into Message.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// NewValidation reports a malformed request ID or store ID.
func NewValidation(description string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: description}
}

// NewSession reports a correlation cookie mismatch.
func NewSession(description string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: description}
}

// NewUnauthorized reports a missing or expired profile cache entry.
func NewUnauthorized(description string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: description}
}

// NewForbidden reports a corrupt or empty cached profile, or a provider
// protocol failure on an OAuth-path route.
func NewForbidden(description string) *Error {
	return &Error{Status: http.StatusForbidden, Message: description}
}

// NewNotFoundUpstream reports a store or account the Store API doesn't know.
func NewNotFoundUpstream(description string) *Error {
	return &Error{Status: http.StatusNotFound, Message: description}
}

// NewUpstream surfaces a Store API failure. A human-readable message from
// upstream becomes a 400 with that message; without one the client sees a
// generic internal error.
func NewUpstream(message string) *Error {
	if message != "" {
		return &Error{Status: http.StatusBadRequest, Message: message}
	}
	return NewInternal()
}

// NewInternal reports a cache backend or serialization failure. No detail
// is leaked.
func NewInternal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}
