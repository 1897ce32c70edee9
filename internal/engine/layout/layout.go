// Package layout provides the viewport collaborator that answers geometry
// questions for text ranges: bounding rectangles, scrolling, the visible
// portion of a document and hit testing.
//
// Grid is the default implementation. It lays text out on a fixed cell
// grid, one row per line as reported by the unit resolver, with cell
// widths from go-runewidth and tabs expanded to tab stops.
package layout

import (
	"fmt"

	"github.com/dshills/textnav/internal/engine/document"
)

// Point is a screen position in pixels.
type Point struct {
	X float64
	Y float64
}

// Rect is a screen rectangle in pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// String returns a human-readable representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Span is a character range [Start, End).
type Span struct {
	Start int
	End   int
}

// Viewport answers geometry questions about a document snapshot.
// Offsets are character offsets into the snapshot.
type Viewport interface {
	// BoundingRectangles returns one rectangle per visible row covered by
	// [start,end). Degenerate spans yield no rectangles.
	BoundingRectangles(snap *document.Snapshot, start, end int) ([]Rect, error)

	// ScrollIntoView scrolls so that [start,end) is visible, aligning its
	// first row with the top when alignTop is set and its last row with
	// the bottom otherwise.
	ScrollIntoView(snap *document.Snapshot, start, end int, alignTop bool) error

	// VisibleSpans returns the visible text, one span per visible row.
	VisibleSpans(snap *document.Snapshot) []Span

	// OffsetAt returns the offset nearest to p within the visible text.
	// ok is false when nothing is visible.
	OffsetAt(snap *document.Snapshot, p Point) (offset int, ok bool)
}
