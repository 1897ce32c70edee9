package layout

import (
	"math"
	"sort"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/unit"
)

// Default grid metrics.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
	DefaultRows       = 24
	DefaultColumns    = 80
	DefaultTabWidth   = 4
)

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithCellSize sets the cell size in pixels.
func WithCellSize(width, height float64) GridOption {
	return func(g *Grid) {
		if width > 0 {
			g.cellWidth = width
		}
		if height > 0 {
			g.cellHeight = height
		}
	}
}

// WithOrigin sets the screen position of the top-left cell.
func WithOrigin(p Point) GridOption {
	return func(g *Grid) {
		g.origin = p
	}
}

// WithSize sets the viewport size in cells. A zero size shows nothing.
func WithSize(rows, columns int) GridOption {
	return func(g *Grid) {
		g.rows = max(rows, 0)
		g.columns = max(columns, 0)
	}
}

// WithTabWidth sets the tab stop interval.
func WithTabWidth(n int) GridOption {
	return func(g *Grid) {
		if n > 0 {
			g.tabWidth = n
		}
	}
}

// Grid is a Viewport laying text out on a fixed cell grid.
// It is safe for concurrent use.
type Grid struct {
	resolver *unit.Resolver

	cellWidth  float64
	cellHeight float64
	origin     Point
	tabWidth   int

	mu         sync.RWMutex
	rows       int
	columns    int
	topRow     int
	leftColumn int
}

// NewGrid creates a grid whose rows are the resolver's lines.
func NewGrid(resolver *unit.Resolver, opts ...GridOption) *Grid {
	g := &Grid{
		resolver:   resolver,
		cellWidth:  DefaultCellWidth,
		cellHeight: DefaultCellHeight,
		tabWidth:   DefaultTabWidth,
		rows:       DefaultRows,
		columns:    DefaultColumns,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Size returns the viewport size in cells.
func (g *Grid) Size() (rows, columns int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rows, g.columns
}

// Resize updates the viewport size in cells.
func (g *Grid) Resize(rows, columns int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rows = max(rows, 0)
	g.columns = max(columns, 0)
}

// Scroll returns the first visible row and column.
func (g *Grid) Scroll() (topRow, leftColumn int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topRow, g.leftColumn
}

// ScrollTo sets the first visible row and column.
func (g *Grid) ScrollTo(topRow, leftColumn int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.topRow = max(topRow, 0)
	g.leftColumn = max(leftColumn, 0)
}

// row is one laid-out line. cols[i] is the column where the character at
// start+i begins; cols has one extra entry for the end of the content.
type row struct {
	start int
	end   int // end of content, before any line break
	next  int // start of the following row
	cols  []int
}

func (r row) colOf(offset int) int {
	return r.cols[min(max(offset, r.start), r.end)-r.start]
}

// offsetOf returns the offset whose cell covers col, snapping to the
// nearer edge of wide cells.
func (r row) offsetOf(col int) int {
	i := sort.Search(len(r.cols), func(i int) bool { return r.cols[i] > col })
	if i == 0 {
		return r.start
	}
	i--
	if i < len(r.cols)-1 {
		left, right := r.cols[i], r.cols[i+1]
		if right-left > 1 && col-left >= (right-left+1)/2 {
			i++
		}
	}
	return r.start + i
}

// lines returns the row boundaries of snap.
func (g *Grid) lines(snap *document.Snapshot) []int {
	return g.resolver.Boundaries(snap, unit.Line)
}

// layoutRow lays out the i'th row.
func (g *Grid) layoutRow(snap *document.Snapshot, lines []int, i int) row {
	text := snap.Runes()
	r := row{start: lines[i], next: lines[i+1]}
	r.end = r.next
	for r.end > r.start && unit.IsLineBreak(text[r.end-1]) {
		r.end--
	}

	r.cols = make([]int, 0, r.end-r.start+1)
	col := 0
	for _, c := range text[r.start:r.end] {
		r.cols = append(r.cols, col)
		if c == '\t' {
			col += g.tabWidth - col%g.tabWidth
			continue
		}
		col += runewidth.RuneWidth(c)
	}
	r.cols = append(r.cols, col)
	return r
}

// rowIndex returns the row containing offset. The end of the document
// belongs to the last row.
func rowIndex(lines []int, offset int) int {
	i := sort.Search(len(lines), func(i int) bool { return lines[i] > offset }) - 1
	return min(max(i, 0), len(lines)-2)
}

func checkSpan(snap *document.Snapshot, start, end int) error {
	if start < 0 || start > end || end > snap.Len() {
		return document.ErrRangeInvalid
	}
	return nil
}

// BoundingRectangles implements Viewport.
func (g *Grid) BoundingRectangles(snap *document.Snapshot, start, end int) ([]Rect, error) {
	if err := checkSpan(snap, start, end); err != nil {
		return nil, err
	}
	rects := []Rect{}
	if start == end {
		return rects, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	lines := g.lines(snap)
	first, last := rowIndex(lines, start), rowIndex(lines, end-1)
	first = max(first, g.topRow)
	last = min(last, g.topRow+g.rows-1)

	for i := first; i <= last; i++ {
		r := g.layoutRow(snap, lines, i)
		c0 := max(r.colOf(start), g.leftColumn)
		c1 := min(r.colOf(end), g.leftColumn+g.columns)
		if c1 <= c0 {
			continue
		}
		rects = append(rects, Rect{
			X:      g.origin.X + float64(c0-g.leftColumn)*g.cellWidth,
			Y:      g.origin.Y + float64(i-g.topRow)*g.cellHeight,
			Width:  float64(c1-c0) * g.cellWidth,
			Height: g.cellHeight,
		})
	}
	return rects, nil
}

// ScrollIntoView implements Viewport. Rows already fully visible do not
// scroll vertically; the start column is always brought into view.
func (g *Grid) ScrollIntoView(snap *document.Snapshot, start, end int, alignTop bool) error {
	if err := checkSpan(snap, start, end); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.rows == 0 || g.columns == 0 || snap.Len() == 0 {
		return nil
	}
	lines := g.lines(snap)
	first := rowIndex(lines, start)
	last := first
	if end > start {
		last = rowIndex(lines, end-1)
	}

	if alignTop {
		g.topRow = first
	} else {
		g.topRow = max(last-g.rows+1, 0)
	}

	col := g.layoutRow(snap, lines, first).colOf(start)
	if col < g.leftColumn || col >= g.leftColumn+g.columns {
		g.leftColumn = max(col-g.columns/2, 0)
	}
	return nil
}

// VisibleSpans implements Viewport.
func (g *Grid) VisibleSpans(snap *document.Snapshot) []Span {
	g.mu.RLock()
	defer g.mu.RUnlock()

	spans := []Span{}
	if snap.Len() == 0 || g.rows == 0 || g.columns == 0 {
		return spans
	}
	lines := g.lines(snap)
	for i := g.topRow; i < len(lines)-1 && i < g.topRow+g.rows; i++ {
		r := g.layoutRow(snap, lines, i)
		s := Span{Start: r.offsetOf(g.leftColumn), End: r.offsetOf(g.leftColumn + g.columns)}
		if r.colOf(s.Start) < g.leftColumn && s.Start < r.end {
			s.Start++
		}
		if s.End == r.end {
			s.End = r.next
		}
		if s.Start < s.End {
			spans = append(spans, s)
		}
	}
	return spans
}

// OffsetAt implements Viewport. Points outside the viewport snap to its
// nearest edge.
func (g *Grid) OffsetAt(snap *document.Snapshot, p Point) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.rows == 0 || g.columns == 0 {
		return 0, false
	}
	if snap.Len() == 0 {
		return 0, true
	}
	lines := g.lines(snap)
	rowCount := len(lines) - 1
	if g.topRow >= rowCount {
		return 0, false
	}

	y := int(math.Floor((p.Y - g.origin.Y) / g.cellHeight))
	x := int(math.Floor((p.X - g.origin.X) / g.cellWidth))
	y = min(max(y, 0), g.rows-1)
	x = min(max(x, 0), g.columns-1)

	i := min(g.topRow+y, rowCount-1)
	return g.layoutRow(snap, lines, i).offsetOf(g.leftColumn + x), true
}
