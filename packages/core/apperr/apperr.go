// Package apperr defines the classified errors surfaced by reqline.
//
// Every failure that reaches a caller carries a Kind so the boundary can
// decide how to present it without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller
type Kind int

const (
	// KindMalformedInput covers grammar, casing, keyword, JSON and method/URL shape violations
	KindMalformedInput Kind = iota
	// KindOuterValidation is a wrapping request body that fails its own schema
	KindOuterValidation
	// KindExecutionFailure is a transport or unexpected failure while executing the outbound call
	KindExecutionFailure
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "MalformedInput"
	case KindOuterValidation:
		return "OuterValidation"
	case KindExecutionFailure:
		return "ExecutionFailure"
	default:
		return "unknown"
	}
}

// Error is a classified error. Message is the only part shown to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Malformed builds a KindMalformedInput error
func Malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformedInput, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindOuterValidation error
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindOuterValidation, Message: fmt.Sprintf(format, args...)}
}

// Execution wraps err as a KindExecutionFailure error
func Execution(err error, format string, args ...any) *Error {
	return &Error{Kind: KindExecutionFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsCallerFault reports whether err should be presented as a bad request.
func IsCallerFault(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindMalformedInput || k == KindOuterValidation)
}
