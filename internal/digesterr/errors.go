// Package digesterr defines the error taxonomy shared across the validation
// engine: comparators, samplers, and the store all surface one of these
// kinds rather than a bare wrapped string, so callers can branch on what
// went wrong with errors.Is/errors.As.
package digesterr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure.
type Kind int

const (
	// UnknownIdType means a namespace was not recognized by the registry.
	UnknownIdType Kind = iota
	// NoMapping means canonicalization yielded no known entities for any category.
	NoMapping
	// InsufficientBackground means a sampler's candidate pool was too small.
	InsufficientBackground
	// StoreInconsistent means a store invariant was violated (fatal, aborts the process).
	StoreInconsistent
	// Cancelled means cooperative cancellation was observed.
	Cancelled
	// IoError surfaces a load/persist failure unchanged.
	IoError
	// UnsupportedCrossDomain means an IdRef comparison requested a pairing
	// that has no defined substitution.
	UnsupportedCrossDomain
	// InvalidRequest means the target input itself was malformed.
	InvalidRequest
)

func (k Kind) String() string {
	switch k {
	case UnknownIdType:
		return "UnknownIdType"
	case NoMapping:
		return "NoMapping"
	case InsufficientBackground:
		return "InsufficientBackground"
	case StoreInconsistent:
		return "StoreInconsistent"
	case Cancelled:
		return "Cancelled"
	case IoError:
		return "IoError"
	case UnsupportedCrossDomain:
		return "UnsupportedCrossDomain"
	case InvalidRequest:
		return "InvalidRequest"
	default:
		return "Unknown"
	}
}

// Error is a typed error carrying a Kind plus a wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
