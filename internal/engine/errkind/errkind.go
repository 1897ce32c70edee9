// Package errkind defines the closed set of error kinds returned by the
// navigation engine.
//
// A Kind is itself an error, so callers classify failures with errors.Is:
//
//	if errors.Is(err, errkind.NullArgument) {
//	    // a required argument was nil
//	}
//
// Engine operations return *Error values that carry the operation name,
// the kind and an optional cause.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind uint8

const (
	// Unknown is reported by Of for errors that did not come from the engine.
	Unknown Kind = iota

	// NullArgument indicates a required reference argument was absent.
	NullArgument

	// InvalidArgument indicates a well-formed but semantically illegal argument.
	InvalidArgument

	// OutOfRange indicates a numeric argument outside its legal domain.
	OutOfRange

	// InvalidOperation indicates the operation is illegal in the current state.
	InvalidOperation

	// UnsupportedOperation indicates the provider does not support the operation.
	UnsupportedOperation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NullArgument:
		return "NullArgument"
	case InvalidArgument:
		return "InvalidArgument"
	case OutOfRange:
		return "OutOfRange"
	case InvalidOperation:
		return "InvalidOperation"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	default:
		return "Unknown"
	}
}

// Error implements the error interface so a Kind can be used as an
// errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// Error is an engine error.
type Error struct {
	// Op is the operation that failed (e.g. "TextRange.FindText").
	Op string
	// Kind classifies the failure.
	Kind Kind
	// Msg describes the failure.
	Msg string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind, or an *Error with the
// same kind and message.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Kind:
		return e.Kind == t
	case *Error:
		return e.Kind == t.Kind && e.Msg == t.Msg
	}
	return false
}

// New returns an *Error without an operation name. It is used for
// package-level sentinels.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// E builds an *Error for op.
func E(op string, kind Kind, format string, args ...any) error {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	return &Error{Op: op, Kind: kind, Msg: format}
}

// Wrap attaches op to err. If err is already an engine error its kind is
// kept; otherwise the result has kind fallback.
func Wrap(op string, err error, fallback Kind) error {
	if err == nil {
		return nil
	}
	kind := Of(err)
	if kind == Unknown {
		kind = fallback
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Of returns the Kind of err, or Unknown if err is not an engine error.
func Of(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unknown
}
