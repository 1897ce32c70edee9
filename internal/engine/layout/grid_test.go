package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/unit"
)

// sample has three rows: "ab\n", "cd\tx\n" and "世界".
const sample = "ab\ncd\tx\n世界"

func newGrid(opts ...GridOption) (*Grid, *document.Snapshot) {
	opts = append([]GridOption{WithCellSize(10, 20)}, opts...)
	return NewGrid(unit.NewResolver(), opts...), document.MustNew(sample).Snapshot()
}

func TestBoundingRectangles(t *testing.T) {
	g, snap := newGrid()

	got, err := g.BoundingRectangles(snap, 0, snap.Len())
	if err != nil {
		t.Fatalf("BoundingRectangles failed: %v", err)
	}
	want := []Rect{
		{X: 0, Y: 0, Width: 20, Height: 20},
		{X: 0, Y: 20, Width: 50, Height: 20},
		{X: 0, Y: 40, Width: 40, Height: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}

	got, _ = g.BoundingRectangles(snap, 4, 6)
	if diff := cmp.Diff([]Rect{{X: 10, Y: 20, Width: 30, Height: 20}}, got); diff != "" {
		t.Errorf("partial rects mismatch (-want +got):\n%s", diff)
	}
}

func TestBoundingRectanglesEdgeCases(t *testing.T) {
	g, snap := newGrid()

	got, err := g.BoundingRectangles(snap, 2, 2)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("degenerate span: got %v, %v; want empty slice", got, err)
	}

	// Only the line break is covered.
	if got, _ := g.BoundingRectangles(snap, 2, 3); len(got) != 0 {
		t.Errorf("line break only: got %v", got)
	}

	if _, err := g.BoundingRectangles(snap, 5, 99); !errors.Is(err, document.ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestBoundingRectanglesClipped(t *testing.T) {
	g, snap := newGrid(WithOrigin(Point{X: 100, Y: 50}), WithSize(1, 3))
	g.ScrollTo(1, 1)

	got, err := g.BoundingRectangles(snap, 0, snap.Len())
	if err != nil {
		t.Fatal(err)
	}
	want := []Rect{{X: 100, Y: 50, Width: 30, Height: 20}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clipped rects mismatch (-want +got):\n%s", diff)
	}
}

func TestScrollIntoView(t *testing.T) {
	tests := []struct {
		name       string
		rows       int
		start, end int
		alignTop   bool
		wantTop    int
	}{
		{"align top", 1, 8, 10, true, 2},
		{"align bottom", 1, 0, 10, false, 2},
		{"bottom with room", 2, 0, 10, false, 1},
		{"already at top", 3, 0, 2, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, snap := newGrid(WithSize(tt.rows, 80))
			if err := g.ScrollIntoView(snap, tt.start, tt.end, tt.alignTop); err != nil {
				t.Fatal(err)
			}
			if top, _ := g.Scroll(); top != tt.wantTop {
				t.Errorf("top row = %d, want %d", top, tt.wantTop)
			}
		})
	}
}

func TestScrollIntoViewHorizontal(t *testing.T) {
	g := NewGrid(unit.NewResolver(), WithSize(1, 4))
	snap := document.MustNew("0123456789abcdef").Snapshot()

	if err := g.ScrollIntoView(snap, 12, 13, true); err != nil {
		t.Fatal(err)
	}
	if _, left := g.Scroll(); left != 10 {
		t.Errorf("left column = %d, want 10", left)
	}
}

func TestVisibleSpans(t *testing.T) {
	g, snap := newGrid(WithSize(2, 80))

	want := []Span{{Start: 0, End: 3}, {Start: 3, End: 8}}
	if diff := cmp.Diff(want, g.VisibleSpans(snap)); diff != "" {
		t.Errorf("visible spans mismatch (-want +got):\n%s", diff)
	}

	g.ScrollTo(2, 0)
	if diff := cmp.Diff([]Span{{Start: 8, End: 10}}, g.VisibleSpans(snap)); diff != "" {
		t.Errorf("scrolled spans mismatch (-want +got):\n%s", diff)
	}

	empty := document.MustNew("").Snapshot()
	if got := g.VisibleSpans(empty); got == nil || len(got) != 0 {
		t.Errorf("empty document: got %v, want empty slice", got)
	}

	g.Resize(0, 0)
	if got := g.VisibleSpans(snap); len(got) != 0 {
		t.Errorf("empty viewport: got %v", got)
	}
}

func TestOffsetAt(t *testing.T) {
	g, snap := newGrid()

	tests := []struct {
		name string
		p    Point
		want int
	}{
		{"inside", Point{X: 15, Y: 25}, 4},
		{"past line end", Point{X: 1000, Y: 45}, 10},
		{"before origin", Point{X: -5, Y: -5}, 0},
		{"wide cell right half", Point{X: 15, Y: 45}, 9},
		{"wide cell left half", Point{X: 5, Y: 45}, 8},
		{"below last row", Point{X: 0, Y: 300}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.OffsetAt(snap, tt.p)
			if !ok || got != tt.want {
				t.Errorf("OffsetAt(%v) = %d, %v; want %d", tt.p, got, ok, tt.want)
			}
		})
	}

	if off, ok := g.OffsetAt(document.MustNew("").Snapshot(), Point{}); !ok || off != 0 {
		t.Errorf("empty document: got %d, %v", off, ok)
	}
	g.Resize(0, 10)
	if _, ok := g.OffsetAt(snap, Point{}); ok {
		t.Error("empty viewport should report no offset")
	}
}
