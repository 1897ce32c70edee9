package engine

import (
	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/errkind"
)

// ErrorKind classifies engine errors. Test for one with errors.Is.
type ErrorKind = errkind.Kind

// Error kinds returned by range operations.
const (
	NullArgument         = errkind.NullArgument
	InvalidArgument      = errkind.InvalidArgument
	OutOfRange           = errkind.OutOfRange
	InvalidOperation     = errkind.InvalidOperation
	UnsupportedOperation = errkind.UnsupportedOperation
)

// Errors returned by engine operations.
var (
	// ErrStale is wrapped by every operation on a range created before
	// the latest edit.
	ErrStale = document.ErrStale

	// ErrReadOnly indicates an edit of a read-only document.
	ErrReadOnly = document.ErrReadOnly
)

// KindOf returns the kind of err, or errkind.Unknown for foreign errors.
func KindOf(err error) ErrorKind {
	return errkind.Of(err)
}
