package shared

import (
	"errors"
	"fmt"
)

// Kind tags a domain error with the handling policy callers should apply,
// per the error kinds enumerated for this system: which are retried, which
// are surfaced immediately, which a restart policy may act on.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindAlreadyAssigned  Kind = "already_assigned"
	KindInvalidTransition Kind = "invalid_transition"
	KindRateLimited      Kind = "rate_limited"
	KindOpenCircuit      Kind = "open_circuit"
	KindTransient        Kind = "transient"
	KindBadRequest       Kind = "bad_request"
	KindCancelled        Kind = "cancelled"
	KindTimeout          Kind = "timeout"
	KindInternal         Kind = "internal"
)

// Error is the one error type every substrate component returns. Wrap a
// cause with a constructor below rather than returning ad-hoc errors so
// callers can recover the Kind with errors.As.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NewNotFoundError(message string) *Error    { return newErr(KindNotFound, message, nil) }
func NewConflictError(message string) *Error    { return newErr(KindConflict, message, nil) }
func NewAlreadyAssignedError(message string) *Error {
	return newErr(KindAlreadyAssigned, message, nil)
}
func NewInvalidTransitionError(message string) *Error {
	return newErr(KindInvalidTransition, message, nil)
}
func NewRateLimitedError(message string) *Error { return newErr(KindRateLimited, message, nil) }
func NewOpenCircuitError(message string) *Error { return newErr(KindOpenCircuit, message, nil) }
func NewTransientError(message string, cause error) *Error {
	return newErr(KindTransient, message, cause)
}
func NewBadRequestError(message string) *Error { return newErr(KindBadRequest, message, nil) }
func NewCancelledError(message string) *Error  { return newErr(KindCancelled, message, nil) }
func NewTimeoutError(message string) *Error    { return newErr(KindTimeout, message, nil) }
func NewInternalError(message string, cause error) *Error {
	return newErr(KindInternal, message, cause)
}

// KindOf extracts the Kind from err, or KindInternal if err is not one of ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err (or anything it wraps) is a *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// Validation error, kept distinct from Error because it carries a field name
// for structured reporting back to callers (config validation, request
// validation middleware).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
