package document

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/errkind"
)

// Errors returned by document operations.
var (
	ErrOffsetOutOfRange = errkind.New(errkind.OutOfRange, "offset out of range")
	ErrRangeInvalid     = errkind.New(errkind.InvalidArgument, "invalid range")
	ErrReadOnly         = errkind.New(errkind.InvalidOperation, "document is read-only")

	// ErrStale is reported for ranges created before the latest edit.
	ErrStale = errkind.New(errkind.InvalidOperation, "stale range")

	errNilKind        = errkind.New(errkind.NullArgument, "attribute kind is nil")
	errNilChild       = errkind.New(errkind.NullArgument, "child element is nil")
	errLateLineEnding = errors.New("WithLineEnding must precede run and child options")
)

// LineEnding specifies how line endings are normalized.
type LineEnding uint8

const (
	LineEndingAsIs LineEnding = iota // keep text unchanged
	LineEndingLF                     // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "as-is"
	}
}

// RevisionID identifies a document state. Each edit creates a new one.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

type track struct {
	base any
	runs attr.Runs
}

// Document is a text buffer with attribute runs and child spans.
// All methods are thread-safe.
type Document struct {
	mu sync.RWMutex

	id         uuid.UUID
	revision   RevisionID
	lineEnding LineEnding
	readOnly   bool

	// text, the runs in attrs and children are replaced, never modified in
	// place, so snapshots can share them.
	text     []rune
	attrs    map[*attr.Kind]*track
	children []element.Span

	journal *journal

	// construction state
	pending      string
	materialized bool
	err          error
}

// New creates a document holding text.
func New(text string, opts ...Option) (*Document, error) {
	d := &Document{
		id:       uuid.New(),
		revision: NewRevisionID(),
		journal:  newJournal(DefaultJournalSize),
	}
	if err := d.build(text, opts); err != nil {
		return nil, err
	}
	return d, nil
}

// MustNew is like New but panics on error.
func MustNew(text string, opts ...Option) *Document {
	d, err := New(text, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// build applies opts to a fresh state for text.
func (d *Document) build(text string, opts []Option) error {
	d.attrs = make(map[*attr.Kind]*track)
	d.children = nil
	d.text = nil
	d.pending = text
	d.materialized = false
	d.err = nil

	for _, opt := range opts {
		opt(d)
	}
	d.materialize()

	err := d.err
	d.err = nil
	d.pending = ""
	return err
}

// materialize converts the pending text once the line ending is known.
func (d *Document) materialize() {
	if d.materialized {
		return
	}
	d.text = []rune(d.normalizeLineEndings(d.pending))
	d.materialized = true
}

func (d *Document) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// normalizeLineEndings converts all line endings to the document's style.
func (d *Document) normalizeLineEndings(s string) string {
	switch d.lineEnding {
	case LineEndingLF:
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	case LineEndingCRLF:
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
		s = strings.ReplaceAll(s, "\n", "\r\n")
	case LineEndingCR:
		s = strings.ReplaceAll(s, "\r\n", "\r")
		s = strings.ReplaceAll(s, "\n", "\r")
	}
	return s
}

// Read Operations

// ID returns the document identity.
func (d *Document) ID() uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id
}

// Revision returns the current revision ID.
func (d *Document) Revision() RevisionID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Len returns the number of characters.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Text returns the full content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return string(d.text)
}

// IsReadOnly reports whether edits are rejected.
func (d *Document) IsReadOnly() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.readOnly
}

// ChildSpans returns the child spans in document order.
func (d *Document) ChildSpans() []element.Span {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]element.Span, len(d.children))
	copy(out, d.children)
	return out
}

// Snapshot returns a read-only view of the current state.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	attrs := make(map[*attr.Kind]track, len(d.attrs))
	for k, t := range d.attrs {
		attrs[k] = *t
	}
	return &Snapshot{
		id:       d.id,
		revision: d.revision,
		text:     d.text,
		attrs:    attrs,
		children: d.children,
	}
}

// ChangesSince returns the changes applied after rev, oldest first.
// ok is false when the journal no longer reaches back to rev.
func (d *Document) ChangesSince(rev RevisionID) ([]Change, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if rev == d.revision {
		return nil, true
	}
	return d.journal.since(rev)
}

// Write Operations

// Insert inserts text at offset and returns the offset after it.
func (d *Document) Insert(offset int, text string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset < 0 || offset > len(d.text) {
		return 0, ErrOffsetOutOfRange
	}
	return d.replace(offset, offset, text)
}

// Delete removes [start,end).
func (d *Document) Delete(start, end int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if start < 0 || start > end || end > len(d.text) {
		return ErrRangeInvalid
	}
	_, err := d.replace(start, end, "")
	return err
}

// Replace replaces [start,end) with text and returns the offset after it.
func (d *Document) Replace(start, end int, text string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if start < 0 || start > end || end > len(d.text) {
		return 0, ErrRangeInvalid
	}
	return d.replace(start, end, text)
}

// replace performs the edit. Caller holds the write lock.
func (d *Document) replace(start, end int, text string) (int, error) {
	if d.readOnly {
		return 0, ErrReadOnly
	}
	ins := []rune(d.normalizeLineEndings(text))
	if start == end && len(ins) == 0 {
		return start, nil
	}

	next := make([]rune, 0, len(d.text)-(end-start)+len(ins))
	next = append(next, d.text[:start]...)
	next = append(next, ins...)
	next = append(next, d.text[end:]...)
	d.text = next

	for k, t := range d.attrs {
		d.attrs[k] = &track{base: t.base, runs: t.runs.Splice(start, end, len(ins), t.base)}
	}
	d.children = spliceChildren(d.children, start, end, len(ins))

	before := d.revision
	d.revision = NewRevisionID()
	d.journal.add(Change{
		Start:  start,
		End:    end,
		NewLen: len(ins),
		Before: before,
		After:  d.revision,
	})
	return start + len(ins), nil
}

// Reset replaces the whole state as if the document were created anew with
// text and opts, keeping its identity. All earlier ranges become stale and
// the journal records a reset, which cannot be transformed across.
// Reset is how external reloads arrive, so it ignores WithReadOnly.
func (d *Document) Reset(text string, opts ...Option) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, le, ro, maxChanges := d.id, d.lineEnding, d.readOnly, d.journal.max
	attrs, children, old := d.attrs, d.children, d.text
	if err := d.build(text, opts); err != nil {
		d.id, d.lineEnding, d.readOnly, d.journal.max = id, le, ro, maxChanges
		d.attrs, d.children, d.text = attrs, children, old
		d.materialized = true
		return err
	}

	before := d.revision
	d.revision = NewRevisionID()
	d.journal.add(Change{Reset: true, Before: before, After: d.revision})
	return nil
}

// spliceChildren adjusts child spans for [start,end) being replaced by
// newLen characters. Text inserted at a span's edge stays outside it.
// Spans entirely inside a deletion collapse; they are kept so their
// identities stay resolvable.
func spliceChildren(children []element.Span, start, end, newLen int) []element.Span {
	if len(children) == 0 {
		return nil
	}
	out := make([]element.Span, len(children))
	for i, c := range children {
		c.Start = TransformOffset(c.Start, Change{Start: start, End: end, NewLen: newLen}, false)
		c.End = TransformOffset(c.End, Change{Start: start, End: end, NewLen: newLen}, true)
		if c.End < c.Start {
			c.End = c.Start
		}
		out[i] = c
	}
	return out
}
