package document

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/element"
)

// Snapshot provides a read-only view of a document at one revision.
// It is safe for concurrent access and will not change even if the
// document is modified.
type Snapshot struct {
	id       uuid.UUID
	revision RevisionID
	text     []rune
	attrs    map[*attr.Kind]track
	children []element.Span
}

// ID returns the identity of the document the snapshot was taken from.
func (s *Snapshot) ID() uuid.UUID {
	return s.id
}

// Revision returns the revision the snapshot captures.
func (s *Snapshot) Revision() RevisionID {
	return s.revision
}

// Len returns the number of characters.
func (s *Snapshot) Len() int {
	return len(s.text)
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string {
	return string(s.text)
}

// Slice returns the characters in [start,end), clamped to the content.
func (s *Snapshot) Slice(start, end int) string {
	start = clamp(start, 0, len(s.text))
	end = clamp(end, start, len(s.text))
	return string(s.text[start:end])
}

// Runes returns the content as runes. The caller must not modify it.
func (s *Snapshot) Runes() []rune {
	return s.text
}

// RuneAt returns the character at offset.
func (s *Snapshot) RuneAt(offset int) (rune, bool) {
	if offset < 0 || offset >= len(s.text) {
		return 0, false
	}
	return s.text[offset], true
}

// Kinds returns the attribute kinds defined on the document, by name.
func (s *Snapshot) Kinds() []*attr.Kind {
	out := make([]*attr.Kind, 0, len(s.attrs))
	for k := range s.attrs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Runs returns the runs of kind. ok is false when the kind is not defined
// on this document.
func (s *Snapshot) Runs(kind *attr.Kind) (attr.Runs, bool) {
	t, ok := s.attrs[kind]
	if !ok {
		return nil, false
	}
	return t.runs, true
}

// Base returns the document-wide default of kind.
func (s *Snapshot) Base(kind *attr.Kind) (any, bool) {
	t, ok := s.attrs[kind]
	if !ok {
		return nil, false
	}
	return t.base, true
}

// ChildSpans returns the child spans in document order.
func (s *Snapshot) ChildSpans() []element.Span {
	return s.children
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
