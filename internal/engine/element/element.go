// Package element provides the element-tree collaborator the range engine
// consults for enclosing-element and child lookups.
//
// Elements are opaque identities. The engine compares them by pointer and
// never inspects them beyond Name and Role for diagnostics. A Tree maps
// document spans to elements; SpanTree is the default implementation over
// the child spans a document records.
package element

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Element is an opaque element identity.
type Element struct {
	ID   uuid.UUID
	Name string
	Role string
}

// New creates an element with a fresh identity.
func New(name, role string) *Element {
	return &Element{ID: uuid.New(), Name: name, Role: role}
}

// String returns a human-readable representation of the element.
func (e *Element) String() string {
	if e == nil {
		return "Element(nil)"
	}
	return fmt.Sprintf("Element(%s %q %s)", e.Role, e.Name, e.ID)
}

// Span places an element over [Start, End) of a document.
type Span struct {
	Element *Element
	Start   int
	End     int
}

// Contains reports whether [start,end] lies within the span.
// A degenerate query at the span's end is outside unless the span itself
// is degenerate.
func (s Span) Contains(start, end int) bool {
	if start < s.Start || end > s.End {
		return false
	}
	return start < s.End || s.Start == s.End
}

// Intersects reports whether the span overlaps [start,end). Degenerate
// spans and queries intersect when they touch.
func (s Span) Intersects(start, end int) bool {
	if s.Start == s.End || start == end {
		return s.Start <= end && start <= s.End
	}
	return s.Start < end && start < s.End
}

// Source supplies the current child spans, in document order.
type Source interface {
	ChildSpans() []Span
}

// Tree resolves element identities for spans of a document.
type Tree interface {
	// Root returns the element that owns the whole document.
	Root() *Element

	// Span returns the current extent of a child element.
	Span(child *Element) (start, end int, ok bool)

	// Children returns the outermost child elements intersecting [start,end).
	Children(start, end int) []*Element

	// Enclosing returns the innermost element containing [start,end],
	// falling back to Root.
	Enclosing(start, end int) *Element
}

// SpanTree implements Tree over the spans reported by a Source.
type SpanTree struct {
	root   *Element
	source Source
}

// NewSpanTree creates a tree rooted at root over source's spans.
func NewSpanTree(root *Element, source Source) *SpanTree {
	return &SpanTree{root: root, source: source}
}

// Root returns the root element.
func (t *SpanTree) Root() *Element {
	return t.root
}

// Span returns the extent of child.
func (t *SpanTree) Span(child *Element) (int, int, bool) {
	for _, s := range t.source.ChildSpans() {
		if s.Element == child {
			return s.Start, s.End, true
		}
	}
	return 0, 0, false
}

// Children returns the outermost spans intersecting [start,end), in
// document order. A child nested inside another returned child is omitted.
func (t *SpanTree) Children(start, end int) []*Element {
	var hits []Span
	for _, s := range t.source.ChildSpans() {
		if s.Intersects(start, end) {
			hits = append(hits, s)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return hits[i].End > hits[j].End
	})

	out := make([]*Element, 0, len(hits))
	var outer []Span
	for _, s := range hits {
		nested := false
		for _, o := range outer {
			if o.Start <= s.Start && s.End <= o.End && o.Element != s.Element {
				nested = true
				break
			}
		}
		if nested {
			continue
		}
		outer = append(outer, s)
		out = append(out, s.Element)
	}
	return out
}

// Enclosing returns the smallest span containing [start,end], or Root.
func (t *SpanTree) Enclosing(start, end int) *Element {
	best := -1
	var found *Element
	for _, s := range t.source.ChildSpans() {
		if !s.Contains(start, end) {
			continue
		}
		if n := s.End - s.Start; best < 0 || n < best {
			best = n
			found = s.Element
		}
	}
	if found == nil {
		return t.root
	}
	return found
}
