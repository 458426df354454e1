// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. Use cases wrap these sentinels and the transport
// layers (gin handlers, gRPC stream handler) translate them for their callers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key name).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates an external dependency (KMS, database) failed to serve the call.
	ErrUnavailable = errors.New("unavailable")
)

// Stable error kinds reported to API clients.
const (
	KindNotFound     = "not_found"
	KindConflict     = "conflict"
	KindInvalidInput = "invalid_input"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindUnavailable  = "unavailable"
	KindInternal     = "internal_error"
)

var kinds = []struct {
	sentinel error
	kind     string
}{
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
	{ErrInvalidInput, KindInvalidInput},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrUnavailable, KindUnavailable},
}

// Kind classifies err by the first sentinel found in its tree, checked in the
// order the sentinels are declared. Errors carrying no sentinel are KindInternal.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
