package textrange

import (
	"fmt"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/engine/unit"
)

// Endpoint names one end of a range.
type Endpoint uint8

const (
	Start Endpoint = iota
	End
)

// String returns the endpoint name.
func (e Endpoint) String() string {
	if e == End {
		return "End"
	}
	return "Start"
}

// ParseEndpoint returns the endpoint with the given name.
func ParseEndpoint(s string) (Endpoint, error) {
	switch s {
	case "start", "Start":
		return Start, nil
	case "end", "End":
		return End, nil
	}
	return Start, fmt.Errorf("unknown endpoint %q", s)
}

// TextRange is a span of a document at a fixed revision.
type TextRange struct {
	p     *Provider
	rev   document.RevisionID
	start int
	end   int
}

// Start returns the start offset.
func (r *TextRange) Start() int { return r.start }

// End returns the end offset.
func (r *TextRange) End() int { return r.end }

// Revision returns the document revision the range belongs to.
func (r *TextRange) Revision() document.RevisionID { return r.rev }

// Provider returns the provider that created the range.
func (r *TextRange) Provider() *Provider { return r.p }

// IsDegenerate reports whether the range is empty.
func (r *TextRange) IsDegenerate() bool { return r.start == r.end }

// String returns a human-readable representation of the range.
func (r *TextRange) String() string {
	return fmt.Sprintf("TextRange[%d,%d)@%d", r.start, r.end, r.rev)
}

func (r *TextRange) endpoint(ep Endpoint) int {
	if ep == End {
		return r.end
	}
	return r.start
}

// snapshot returns the document state the range refers to, or a stale
// error if the document has moved on.
func (r *TextRange) snapshot(op string) (*document.Snapshot, error) {
	snap := r.p.doc.Snapshot()
	if snap.Revision() != r.rev {
		r.p.log.Debug("%s on stale range %v (document at %d)", op, r, snap.Revision())
		return nil, errkind.Wrap(op, document.ErrStale, errkind.InvalidOperation)
	}
	return snap, nil
}

// peer validates a second range taking part in an operation.
func (r *TextRange) peer(op string, other *TextRange) error {
	if other == nil {
		return errkind.E(op, errkind.NullArgument, "range is nil")
	}
	if other.p.doc != r.p.doc {
		return errkind.E(op, errkind.InvalidArgument, "ranges belong to different documents")
	}
	if _, err := other.snapshot(op); err != nil {
		return err
	}
	return nil
}

func checkUnit(op string, u unit.Unit) error {
	if !u.Valid() {
		return errkind.E(op, errkind.InvalidArgument, "invalid text unit %v", u)
	}
	return nil
}

func checkEndpoint(op string, ep Endpoint) error {
	if ep != Start && ep != End {
		return errkind.E(op, errkind.InvalidArgument, "invalid endpoint %d", ep)
	}
	return nil
}

// Clone returns an independent copy of the range.
func (r *TextRange) Clone() *TextRange {
	c := *r
	return &c
}

// Compare reports whether both ranges cover the same span of the same
// document.
func (r *TextRange) Compare(other *TextRange) (bool, error) {
	const op = "TextRange.Compare"
	if _, err := r.snapshot(op); err != nil {
		return false, err
	}
	if err := r.peer(op, other); err != nil {
		return false, err
	}
	return r.start == other.start && r.end == other.end, nil
}

// CompareEndpoints returns the sign of the difference between the given
// endpoint of r and otherEp of other.
func (r *TextRange) CompareEndpoints(ep Endpoint, other *TextRange, otherEp Endpoint) (int, error) {
	const op = "TextRange.CompareEndpoints"
	if _, err := r.snapshot(op); err != nil {
		return 0, err
	}
	if err := r.peer(op, other); err != nil {
		return 0, err
	}
	if err := checkEndpoint(op, ep); err != nil {
		return 0, err
	}
	if err := checkEndpoint(op, otherEp); err != nil {
		return 0, err
	}
	switch a, b := r.endpoint(ep), other.endpoint(otherEp); {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	}
	return 0, nil
}

// Move collapses the range to a degenerate range count units away from its
// start and returns the number of units actually moved.
func (r *TextRange) Move(u unit.Unit, count int) (int, error) {
	const op = "TextRange.Move"
	snap, err := r.snapshot(op)
	if err != nil {
		return 0, err
	}
	if err := checkUnit(op, u); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	off, moved := r.p.resolver.Step(snap, r.start, u, count)
	r.start, r.end = off, off
	return moved, nil
}

// MoveEndpointByUnit moves one endpoint by count units. If it crosses the
// other endpoint, the range collapses at the moved position.
func (r *TextRange) MoveEndpointByUnit(ep Endpoint, u unit.Unit, count int) (int, error) {
	const op = "TextRange.MoveEndpointByUnit"
	snap, err := r.snapshot(op)
	if err != nil {
		return 0, err
	}
	if err := checkEndpoint(op, ep); err != nil {
		return 0, err
	}
	if err := checkUnit(op, u); err != nil {
		return 0, err
	}
	off, moved := r.p.resolver.Step(snap, r.endpoint(ep), u, count)
	r.setEndpoint(ep, off)
	return moved, nil
}

// MoveEndpointByRange sets one endpoint to otherEp of other. If the range
// would invert, its other endpoint is pulled along.
func (r *TextRange) MoveEndpointByRange(ep Endpoint, other *TextRange, otherEp Endpoint) error {
	const op = "TextRange.MoveEndpointByRange"
	if _, err := r.snapshot(op); err != nil {
		return err
	}
	if err := r.peer(op, other); err != nil {
		return err
	}
	if err := checkEndpoint(op, ep); err != nil {
		return err
	}
	if err := checkEndpoint(op, otherEp); err != nil {
		return err
	}
	r.setEndpoint(ep, other.endpoint(otherEp))
	return nil
}

func (r *TextRange) setEndpoint(ep Endpoint, off int) {
	if ep == End {
		r.end = off
		if r.start > off {
			r.start = off
		}
		return
	}
	r.start = off
	if r.end < off {
		r.end = off
	}
}

// ExpandToEnclosingUnit sets the range to the unit containing its start.
func (r *TextRange) ExpandToEnclosingUnit(u unit.Unit) error {
	const op = "TextRange.ExpandToEnclosingUnit"
	snap, err := r.snapshot(op)
	if err != nil {
		return err
	}
	if err := checkUnit(op, u); err != nil {
		return err
	}
	r.start, r.end = r.p.resolver.Enclosing(snap, r.start, u)
	return nil
}

// GetAttributeValue returns the value of kind over the range.
// It returns attr.NotSupported if the document never defines kind and
// attr.Mixed if the range covers more than one value. A degenerate range
// reports the value of the character at its position.
func (r *TextRange) GetAttributeValue(kind *attr.Kind) (any, error) {
	const op = "TextRange.GetAttributeValue"
	snap, err := r.snapshot(op)
	if err != nil {
		return nil, err
	}
	if kind == nil {
		return nil, errkind.E(op, errkind.NullArgument, "attribute kind is nil")
	}
	runs, ok := snap.Runs(kind)
	if !ok {
		return attr.NotSupported, nil
	}
	if r.start == r.end {
		if run, ok := runs.At(r.start); ok {
			return run.Value, nil
		}
		base, _ := snap.Base(kind)
		return base, nil
	}
	clip := runs.Clip(r.start, r.end)
	if len(clip) == 0 {
		base, _ := snap.Base(kind)
		return base, nil
	}
	for _, run := range clip[1:] {
		if !attr.Equal(run.Value, clip[0].Value) {
			return attr.Mixed, nil
		}
	}
	return clip[0].Value, nil
}

// GetText returns the range text. maxLength -1 returns everything, 0
// returns "" and k > 0 returns at most k characters.
func (r *TextRange) GetText(maxLength int) (string, error) {
	const op = "TextRange.GetText"
	snap, err := r.snapshot(op)
	if err != nil {
		return "", err
	}
	switch {
	case maxLength < -1:
		return "", errkind.E(op, errkind.OutOfRange, "maxLength %d is less than -1", maxLength)
	case maxLength == -1:
		return snap.Slice(r.start, r.end), nil
	default:
		return snap.Slice(r.start, r.start+min(maxLength, r.end-r.start)), nil
	}
}

// GetBoundingRectangles returns the screen rectangles covering the range.
// Degenerate ranges yield an empty slice.
func (r *TextRange) GetBoundingRectangles() ([]layout.Rect, error) {
	const op = "TextRange.GetBoundingRectangles"
	snap, err := r.snapshot(op)
	if err != nil {
		return nil, err
	}
	if r.start == r.end || snap.Len() == 0 {
		return []layout.Rect{}, nil
	}
	return r.p.viewport.BoundingRectangles(snap, r.start, r.end)
}

// ScrollIntoView asks the viewport to reveal the range.
func (r *TextRange) ScrollIntoView(alignTop bool) error {
	const op = "TextRange.ScrollIntoView"
	snap, err := r.snapshot(op)
	if err != nil {
		return err
	}
	return r.p.viewport.ScrollIntoView(snap, r.start, r.end, alignTop)
}

// GetEnclosingElement returns the innermost element containing the range.
func (r *TextRange) GetEnclosingElement() (*element.Element, error) {
	snap, err := r.snapshot("TextRange.GetEnclosingElement")
	if err != nil {
		return nil, err
	}
	return r.p.treeFor(snap).Enclosing(r.start, r.end), nil
}

// GetChildren returns the outermost child elements intersecting the range.
func (r *TextRange) GetChildren() ([]*element.Element, error) {
	snap, err := r.snapshot("TextRange.GetChildren")
	if err != nil {
		return nil, err
	}
	children := r.p.treeFor(snap).Children(r.start, r.end)
	if children == nil {
		children = []*element.Element{}
	}
	return children, nil
}

// Select replaces the provider's selection with the range.
func (r *TextRange) Select() error {
	const op = "TextRange.Select"
	snap, err := r.snapshot(op)
	if err != nil {
		return err
	}
	return r.p.changeSelection(op, snap, func(s *selection.Set) {
		s.Set(r.span())
	}, selection.Single)
}

// AddToSelection adds the range to the provider's selection.
func (r *TextRange) AddToSelection() error {
	const op = "TextRange.AddToSelection"
	snap, err := r.snapshot(op)
	if err != nil {
		return err
	}
	return r.p.changeSelection(op, snap, func(s *selection.Set) {
		s.Add(r.span())
	}, selection.Multiple)
}

// RemoveFromSelection removes the range from the provider's selection.
func (r *TextRange) RemoveFromSelection() error {
	const op = "TextRange.RemoveFromSelection"
	snap, err := r.snapshot(op)
	if err != nil {
		return err
	}
	return r.p.changeSelection(op, snap, func(s *selection.Set) {
		s.Remove(r.span())
	}, selection.Multiple)
}

func (r *TextRange) span() selection.Span {
	return selection.Span{Start: r.start, End: r.end}
}
