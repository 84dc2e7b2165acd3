// Package apperr defines the error taxonomy shared by the store, layout
// manager, converter, and façade, per spec.md §7.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way spec.md §7 requires callers to branch on.
type Kind int

const (
	// KindInternal covers backing-store failures, corruption, and anything
	// that should be logged with provenance and surfaced to the caller as a
	// generic "operation failed".
	KindInternal Kind = iota
	// KindValidation covers bad input from the caller: safe to display.
	KindValidation
	// KindConflict covers a unique-index violation on create.
	KindConflict
	// KindNotFound covers a referenced row or artifact absent from storage.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// MarshalText encodes a Kind as its String() name, so JSON carries
// "validation", "conflict", "not_found", or "internal".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is the structured error value returned across package boundaries.
// Its JSON shape matches spec.md §6's "Error JSON" contract.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// MarshalMap returns the {"kind": ..., "message": ...} shape for JSON callers.
func (e *Error) MarshalMap() map[string]string {
	return map[string]string{
		"kind":    e.Kind.String(),
		"message": e.Message,
	}
}

func newf(kind Kind, wrapped error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), err: wrapped}
}

// Validation builds a validation-kind error. Safe to display to the caller.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, nil, format, args...)
}

// Conflict builds a conflict-kind error (unique-index violation on create).
func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, nil, format, args...)
}

// NotFound builds a not-found-kind error.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, nil, format, args...)
}

// Internal wraps a lower-level error as an internal-kind failure. The
// original error is preserved for logging with provenance but the message
// returned to the caller is the generic, safe-to-display one.
func Internal(cause error, format string, args ...any) *Error {
	return newf(KindInternal, cause, format, args...)
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to KindInternal when err is not
// an *Error (e.g. a raw error escaped from a lower layer).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
