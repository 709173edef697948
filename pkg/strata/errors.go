package strata

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed set of failure categories surfaced by the Strata
// service and its client runtime. The kind determines retry behavior and the
// process exit code.
type ErrorKind int

const (
	// KindUnknown marks errors that crossed a boundary without structured
	// kind information. They are never retried unless their message matches
	// a known transient-network phrase.
	KindUnknown ErrorKind = iota

	// KindConnection indicates the server could not be reached or the
	// connection was lost mid-operation.
	KindConnection

	// KindTimeout indicates an operation exceeded a server or client deadline.
	KindTimeout

	// KindResourceLimit indicates the server refused work due to capacity
	// (too many connections, memory pressure, queue saturation).
	KindResourceLimit

	// KindAuthentication indicates the credentials were rejected.
	KindAuthentication

	// KindPermission indicates the authenticated principal lacks rights
	// for the requested operation.
	KindPermission

	// KindInvalidQuery indicates the SQL statement itself was rejected.
	KindInvalidQuery

	// KindStream indicates a fatal streaming condition on the client side,
	// such as a bounded-buffer insert or remove exceeding its timeout.
	KindStream
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection error"
	case KindTimeout:
		return "timeout error"
	case KindResourceLimit:
		return "resource limit"
	case KindAuthentication:
		return "authentication error"
	case KindPermission:
		return "permission error"
	case KindInvalidQuery:
		return "invalid query"
	case KindStream:
		return "stream error"
	default:
		return "unknown error"
	}
}

// Error is the structured failure type used throughout the client runtime.
// Callers can recover the kind with errors.As and the original cause with
// errors.Unwrap / errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a structured error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a structured error of the given kind wrapping cause.
// The cause's message is preserved for diagnostics and remains reachable
// via errors.Unwrap.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the structured kind from err. The second return value is
// false when err carries no *Error anywhere in its chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return KindUnknown, false
}

// Sentinel errors for conditions that are not service failures.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known kinds,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrInvalidConfig) {
		return ExitConfigError
	}

	if kind, ok := KindOf(err); ok {
		switch kind {
		case KindConnection, KindTimeout, KindResourceLimit:
			return ExitConnectionError
		case KindAuthentication, KindPermission:
			return ExitAuthError
		case KindInvalidQuery:
			return ExitQueryError
		case KindStream:
			return ExitStreamError
		}
	}

	// Unstructured errors: fall back to common message patterns.
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
