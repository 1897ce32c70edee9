// Package selection manages the set of selected spans of a document.
//
// A Set keeps its spans sorted and disjoint: overlapping or touching spans
// are merged as they are added. Degenerate spans represent a caret and are
// kept unless another span covers them.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/textnav/internal/engine/document"
)

// Mode declares which selection mutations a provider accepts.
type Mode uint8

const (
	// None rejects every selection change.
	None Mode = iota
	// Single allows replacing the selection with one span.
	Single
	// Multiple also allows adding and removing spans.
	Multiple
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// ParseMode returns the mode with the given name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "single":
		return Single, nil
	case "multiple", "multi":
		return Multiple, nil
	}
	return None, fmt.Errorf("unknown selection mode %q", s)
}

// Span is a selected character range [Start, End).
type Span struct {
	Start int
	End   int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// IsEmpty reports whether the span is degenerate.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Set is an ordered set of disjoint spans. The zero value is empty and
// ready to use. A Set is not safe for concurrent mutation.
type Set struct {
	spans []Span
}

// NewSet creates a set holding spans.
func NewSet(spans ...Span) *Set {
	s := &Set{}
	s.spans = append(s.spans, spans...)
	s.normalize()
	return s
}

// All returns a copy of the spans in document order.
func (s *Set) All() []Span {
	out := make([]Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Len returns the number of spans.
func (s *Set) Len() int {
	return len(s.spans)
}

// IsEmpty reports whether nothing is selected.
func (s *Set) IsEmpty() bool {
	return len(s.spans) == 0
}

// Clear removes all spans.
func (s *Set) Clear() {
	s.spans = nil
}

// Set replaces the whole selection with sp.
func (s *Set) Set(sp Span) {
	s.spans = []Span{sp}
}

// Add merges sp into the selection.
func (s *Set) Add(sp Span) {
	s.spans = append(s.spans, sp)
	s.normalize()
}

// Remove subtracts sp from the selection. A degenerate sp removes the
// spans it lies within, including carets at the same offset.
func (s *Set) Remove(sp Span) {
	out := make([]Span, 0, len(s.spans)+1)
	for _, cur := range s.spans {
		if sp.IsEmpty() {
			if cur.Start <= sp.Start && sp.Start <= cur.End && (cur.IsEmpty() || sp.Start < cur.End) {
				continue
			}
			out = append(out, cur)
			continue
		}
		if cur.End <= sp.Start || cur.Start >= sp.End {
			out = append(out, cur)
			continue
		}
		if cur.Start < sp.Start {
			out = append(out, Span{Start: cur.Start, End: sp.Start})
		}
		if cur.End > sp.End {
			out = append(out, Span{Start: sp.End, End: cur.End})
		}
	}
	s.spans = out
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return &Set{spans: s.All()}
}

// Equals reports whether both sets hold the same spans.
func (s *Set) Equals(other *Set) bool {
	if len(s.spans) != len(other.spans) {
		return false
	}
	for i := range s.spans {
		if s.spans[i] != other.spans[i] {
			return false
		}
	}
	return true
}

// Clamp limits all spans to [0, n].
func (s *Set) Clamp(n int) {
	for i := range s.spans {
		s.spans[i].Start = min(max(s.spans[i].Start, 0), n)
		s.spans[i].End = min(max(s.spans[i].End, s.spans[i].Start), n)
	}
	s.normalize()
}

// normalize sorts the spans and merges overlapping ones. Spans that only
// touch stay separate. A caret within or at the edge of a span, or
// duplicating another caret, is absorbed.
func (s *Set) normalize() {
	if len(s.spans) <= 1 {
		return
	}

	sort.Slice(s.spans, func(i, j int) bool {
		if s.spans[i].Start != s.spans[j].Start {
			return s.spans[i].Start < s.spans[j].Start
		}
		return s.spans[i].End > s.spans[j].End
	})

	merged := s.spans[:1]
	for _, sp := range s.spans[1:] {
		last := &merged[len(merged)-1]
		if sp.IsEmpty() && last.Start <= sp.Start && sp.Start <= last.End {
			continue
		}
		if sp.Start < last.End {
			last.End = max(last.End, sp.End)
			continue
		}
		merged = append(merged, sp)
	}
	s.spans = merged
}

// Transform carries the selection across changes, oldest first.
// Text inserted at a span's edge stays outside it. It returns false, and
// leaves the set untouched, if any change is a reset.
func (s *Set) Transform(changes []document.Change) bool {
	for _, c := range changes {
		if c.Reset {
			return false
		}
	}
	for _, c := range changes {
		for i, sp := range s.spans {
			start := document.TransformOffset(sp.Start, c, false)
			end := document.TransformOffset(sp.End, c, true)
			s.spans[i] = Span{Start: start, End: max(end, start)}
		}
	}
	s.normalize()
	return true
}
