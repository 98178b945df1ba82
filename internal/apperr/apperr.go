// Package apperr defines the error type used across taskfocus.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind int

const (
	// KindUnknown is the zero kind.
	KindUnknown Kind = iota
	// KindValidation marks input errors rejected before any write.
	KindValidation
	// KindPersistence marks failed or timed-out gateway writes.
	KindPersistence
	// KindInvariant marks operations rejected to protect task invariants.
	KindInvariant
)

// Error is the concrete error type for taskfocus failures.
type Error struct {
	Cause   error
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Fmt returns a copy of e with its message formatted with the given
// arguments.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Kind:    e.Kind,
		Cause:   e.Cause,
	}
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	return &Error{
		Message: e.Message,
		Kind:    e.Kind,
		Cause:   cause,
	}
}

// Is treats errors sharing a kind and message as the same error, so
// copies produced by Wrap still match their package-level original.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf extracts the kind from err, or KindUnknown if err does not
// carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}
