package document

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/element"
)

// DefaultJournalSize is the number of changes a document remembers.
const DefaultJournalSize = 256

// Option configures a Document during creation or Reset.
type Option func(*Document)

// WithLineEnding normalizes line endings in the initial and inserted text.
// Offsets given to other options refer to the normalized text, so it must
// precede any option that places runs or children.
func WithLineEnding(le LineEnding) Option {
	return func(d *Document) {
		if d.materialized {
			d.fail(errLateLineEnding)
			return
		}
		d.lineEnding = le
	}
}

// WithID sets the document identity. By default a random one is used.
func WithID(id uuid.UUID) Option {
	return func(d *Document) {
		d.id = id
	}
}

// WithJournalSize sets how many changes are kept for ChangesSince.
func WithJournalSize(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.journal.max = n
		}
	}
}

// WithReadOnly makes every edit fail with ErrReadOnly.
func WithReadOnly() Option {
	return func(d *Document) {
		d.readOnly = true
	}
}

// WithAttribute defines kind over the whole document with value base.
func WithAttribute(kind *attr.Kind, base any) Option {
	return func(d *Document) {
		if kind == nil {
			d.fail(errNilKind)
			return
		}
		if err := kind.Check(base); err != nil {
			d.fail(err)
			return
		}
		d.materialize()
		d.attrs[kind] = &track{base: base, runs: attr.Uniform(len(d.text), base)}
	}
}

// WithRun sets kind to value over [start,end). If kind was not defined
// yet it is defined with its type's zero value as base.
func WithRun(kind *attr.Kind, start, end int, value any) Option {
	return func(d *Document) {
		if kind == nil {
			d.fail(errNilKind)
			return
		}
		if err := kind.Check(value); err != nil {
			d.fail(err)
			return
		}
		d.materialize()
		if start < 0 || start > end || end > len(d.text) {
			d.fail(ErrRangeInvalid)
			return
		}
		tr, ok := d.attrs[kind]
		if !ok {
			base := reflect.Zero(kind.Type()).Interface()
			tr = &track{base: base, runs: attr.Uniform(len(d.text), base)}
			d.attrs[kind] = tr
		}
		tr.runs = tr.runs.Set(start, end, value)
	}
}

// WithChild places el over [start,end).
func WithChild(el *element.Element, start, end int) Option {
	return func(d *Document) {
		if el == nil {
			d.fail(errNilChild)
			return
		}
		d.materialize()
		if start < 0 || start > end || end > len(d.text) {
			d.fail(ErrRangeInvalid)
			return
		}
		d.children = append(d.children, element.Span{Element: el, Start: start, End: end})
	}
}
