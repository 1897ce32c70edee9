package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/textnav/internal/config"
	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/engine/textrange"
	"github.com/dshills/textnav/internal/engine/unit"
)

func TestNew(t *testing.T) {
	el, err := New("Hello, World!")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	p, ok := el.Supports(CapabilityText)
	if !ok || p == nil {
		t.Fatalf("Supports(text) = %v, %v", p, ok)
	}
	if p.Document() != el.Document() {
		t.Errorf("provider serves a different document")
	}
	if p.SupportedSelectionMode() != selection.Single {
		t.Errorf("default selection mode = %v, want single", p.SupportedSelectionMode())
	}
	if _, ok := el.Grid(); !ok {
		t.Errorf("expected the default grid viewport")
	}

	text, err := p.DocumentRange().GetText(-1)
	if err != nil || text != "Hello, World!" {
		t.Errorf("GetText = %q, %v", text, err)
	}
}

func TestSupportsOtherCapabilities(t *testing.T) {
	el := MustNew("abc")
	for _, c := range []Capability{CapabilityValue, CapabilityScroll, CapabilityInvoke, Capability(99)} {
		if p, ok := el.Supports(c); ok || p != nil {
			t.Errorf("Supports(%v) = %v, %v; want nil, false", c, p, ok)
		}
	}
}

func TestNewOptionError(t *testing.T) {
	_, err := New("short", WithRun(attr.IsItalic, 2, 40, true))
	if !errors.Is(err, document.ErrRangeInvalid) {
		t.Fatalf("expected ErrRangeInvalid, got %v", err)
	}
	if KindOf(err) != InvalidArgument {
		t.Errorf("KindOf = %v, want InvalidArgument", KindOf(err))
	}
}

func TestLineEndingAnywhere(t *testing.T) {
	// The run offsets refer to the normalized text.
	el, err := New("ab\r\ncd",
		WithRun(attr.IsItalic, 3, 5, true),
		WithLineEnding(document.LineEndingLF),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := el.Document().Text(); got != "ab\ncd" {
		t.Errorf("Text = %q, want normalized", got)
	}
	p, _ := el.Supports(CapabilityText)
	r := p.DocumentRange()
	if _, err := r.MoveEndpointByUnit(textrange.Start, unit.Line, 1); err != nil {
		t.Fatal(err)
	}
	v, err := r.GetAttributeValue(attr.IsItalic)
	if err != nil || v != true {
		t.Errorf("GetAttributeValue(second line) = %v, %v; want true", v, err)
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Units.Supported = []string{"character", "line"}
	cfg.Layout.Rows = 3
	cfg.Layout.Columns = 10
	cfg.Selection.Mode = "none"

	el, err := New("one two\nthree", WithConfig(cfg), WithSelectionMode(selection.Multiple))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p, _ := el.Supports(CapabilityText)

	if p.SupportedSelectionMode() != selection.Multiple {
		t.Errorf("later option should win: mode = %v", p.SupportedSelectionMode())
	}
	if el.Resolver().Supports(unit.Word) {
		t.Errorf("word should not be supported")
	}
	if got := el.Resolver().Resolve(unit.Word); got != unit.Line {
		t.Errorf("Resolve(word) = %v, want line", got)
	}
	g, _ := el.Grid()
	if rows, cols := g.Size(); rows != 3 || cols != 10 {
		t.Errorf("grid size = %dx%d, want 3x10", rows, cols)
	}
}

type fixedViewport struct{}

func (fixedViewport) BoundingRectangles(*document.Snapshot, int, int) ([]layout.Rect, error) {
	return []layout.Rect{{X: 1, Y: 2, Width: 3, Height: 4}}, nil
}
func (fixedViewport) ScrollIntoView(*document.Snapshot, int, int, bool) error { return nil }
func (fixedViewport) VisibleSpans(*document.Snapshot) []layout.Span { return nil }
func (fixedViewport) OffsetAt(*document.Snapshot, layout.Point) (int, bool) {
	return 0, false
}

func TestWithViewport(t *testing.T) {
	el := MustNew("abc", WithViewport(fixedViewport{}))
	if _, ok := el.Grid(); ok {
		t.Errorf("Grid should be absent with a custom viewport")
	}
	p, _ := el.Supports(CapabilityText)
	rects, err := p.DocumentRange().GetBoundingRectangles()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]layout.Rect{{X: 1, Y: 2, Width: 3, Height: 4}}, rects); diff != "" {
		t.Errorf("rects mismatch (-want +got):\n%s", diff)
	}
	if got := p.GetVisibleRanges(); got == nil || len(got) != 0 {
		t.Errorf("GetVisibleRanges = %v, want empty", got)
	}
}

func TestChildrenAndRoot(t *testing.T) {
	root := element.New("editor", "edit")
	link := element.New("link", "hyperlink")
	el := MustNew("see the docs", WithRoot(root), WithChild(link, 8, 12))
	p, _ := el.Supports(CapabilityText)

	if el.Root() != root || p.Root() != root {
		t.Errorf("root not propagated")
	}
	r, err := p.RangeFromChild(link)
	if err != nil {
		t.Fatal(err)
	}
	if text, _ := r.GetText(-1); text != "docs" {
		t.Errorf("child text = %q, want docs", text)
	}
	enc, err := r.GetEnclosingElement()
	if err != nil || enc != link {
		t.Errorf("GetEnclosingElement = %v, %v", enc, err)
	}
}

func TestStaleAfterEdit(t *testing.T) {
	el := MustNew("abc")
	p, _ := el.Supports(CapabilityText)
	r := p.DocumentRange()

	if _, err := el.Document().Insert(3, "d"); err != nil {
		t.Fatal(err)
	}
	_, err := r.GetText(-1)
	if !errors.Is(err, ErrStale) || !errors.Is(err, InvalidOperation) {
		t.Errorf("expected stale InvalidOperation, got %v", err)
	}
}

func TestReadOnly(t *testing.T) {
	el := MustNew("abc", WithReadOnly())
	if _, err := el.Document().Insert(0, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestCapabilityString(t *testing.T) {
	if CapabilityText.String() != "text" || Capability(42).String() != "capability(42)" {
		t.Errorf("unexpected capability names")
	}
}
