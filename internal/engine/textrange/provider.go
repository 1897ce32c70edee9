package textrange

import (
	"sync"

	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/engine/unit"
	"github.com/dshills/textnav/internal/logging"
)

// Option configures a Provider.
type Option func(*Provider)

// WithResolver sets the unit resolver.
func WithResolver(r *unit.Resolver) Option {
	return func(p *Provider) {
		p.resolver = r
	}
}

// WithViewport sets the geometry collaborator.
func WithViewport(v layout.Viewport) Option {
	return func(p *Provider) {
		p.viewport = v
	}
}

// WithTree sets the element tree. By default a SpanTree over the
// document's child spans is used.
func WithTree(t element.Tree) Option {
	return func(p *Provider) {
		p.tree = t
	}
}

// WithRoot sets the element that owns the whole document.
func WithRoot(root *element.Element) Option {
	return func(p *Provider) {
		p.root = root
	}
}

// WithSelectionMode sets the supported selection mode.
func WithSelectionMode(m selection.Mode) Option {
	return func(p *Provider) {
		p.mode = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Provider) {
		p.log = l.WithComponent("textrange")
	}
}

// Provider creates ranges over one document and owns its selection.
//
// Range queries are safe for concurrent use. Selection changes are
// serialized, but the provider assumes a single writer: concurrent
// Select calls race on which one wins.
type Provider struct {
	doc      *document.Document
	resolver *unit.Resolver
	viewport layout.Viewport
	tree     element.Tree
	root     *element.Element
	mode     selection.Mode
	log      *logging.Logger

	mu     sync.Mutex
	sel    selection.Set
	selRev document.RevisionID
}

// NewProvider creates a provider for doc.
func NewProvider(doc *document.Document, opts ...Option) *Provider {
	p := &Provider{
		doc:  doc,
		mode: selection.Single,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = unit.NewResolver()
	}
	if p.viewport == nil {
		p.viewport = layout.NewGrid(p.resolver)
	}
	if p.root == nil {
		p.root = element.New("document", "document")
	}
	p.selRev = doc.Revision()
	return p
}

// Document returns the document the provider serves.
func (p *Provider) Document() *document.Document {
	return p.doc
}

// Resolver returns the unit resolver.
func (p *Provider) Resolver() *unit.Resolver {
	return p.resolver
}

// Viewport returns the geometry collaborator.
func (p *Provider) Viewport() layout.Viewport {
	return p.viewport
}

// Root returns the element owning the whole document.
func (p *Provider) Root() *element.Element {
	return p.root
}

func (p *Provider) treeFor(snap *document.Snapshot) element.Tree {
	if p.tree != nil {
		return p.tree
	}
	return element.NewSpanTree(p.root, snap)
}

func (p *Provider) newRange(snap *document.Snapshot, start, end int) *TextRange {
	return &TextRange{p: p, rev: snap.Revision(), start: start, end: end}
}

// DocumentRange returns a range covering the whole document.
func (p *Provider) DocumentRange() *TextRange {
	snap := p.doc.Snapshot()
	return p.newRange(snap, 0, snap.Len())
}

// RangeFromPoint returns a degenerate range at the visible offset nearest
// to pt. With nothing visible the range sits at the document start.
func (p *Provider) RangeFromPoint(pt layout.Point) *TextRange {
	snap := p.doc.Snapshot()
	off, ok := p.viewport.OffsetAt(snap, pt)
	if !ok {
		off = 0
	}
	return p.newRange(snap, off, off)
}

// RangeFromChild returns the range spanning child's text.
func (p *Provider) RangeFromChild(child *element.Element) (*TextRange, error) {
	const op = "Provider.RangeFromChild"
	if child == nil {
		return nil, errkind.E(op, errkind.NullArgument, "child element is nil")
	}
	snap := p.doc.Snapshot()
	if child == p.root {
		return p.newRange(snap, 0, snap.Len()), nil
	}
	start, end, ok := p.treeFor(snap).Span(child)
	if !ok {
		return nil, errkind.E(op, errkind.InvalidOperation, "%v is not owned by this provider", child)
	}
	return p.newRange(snap, start, end), nil
}

// GetVisibleRanges returns one range per visible row. It is empty, never
// nil, when the document or viewport is empty.
func (p *Provider) GetVisibleRanges() []*TextRange {
	snap := p.doc.Snapshot()
	spans := p.viewport.VisibleSpans(snap)
	out := make([]*TextRange, 0, len(spans))
	for _, s := range spans {
		out = append(out, p.newRange(snap, s.Start, s.End))
	}
	return out
}

// SupportedSelectionMode returns the selection mode.
func (p *Provider) SupportedSelectionMode() selection.Mode {
	return p.mode
}

// GetSelection returns the selected ranges in document order. It is
// empty, never nil, when nothing is selected.
func (p *Provider) GetSelection() []*TextRange {
	snap := p.doc.Snapshot()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncSelection(snap)
	spans := p.sel.All()
	out := make([]*TextRange, 0, len(spans))
	for _, s := range spans {
		out = append(out, p.newRange(snap, s.Start, s.End))
	}
	return out
}

// changeSelection applies f to the selection if the mode allows it.
// need is the least mode that permits the change.
func (p *Provider) changeSelection(op string, snap *document.Snapshot, f func(*selection.Set), need selection.Mode) error {
	switch {
	case p.mode == selection.None:
		return errkind.E(op, errkind.UnsupportedOperation, "provider does not support selection")
	case p.mode < need:
		return errkind.E(op, errkind.InvalidOperation, "provider supports %s selection only", p.mode)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.syncSelection(snap)
	f(&p.sel)
	p.log.Debug("%s: selection now %v", op, p.sel.All())
	return nil
}

// syncSelection carries the selection forward to snap's revision.
// Revisions only grow, so an older snap leaves the selection alone.
// Caller holds p.mu.
func (p *Provider) syncSelection(snap *document.Snapshot) {
	if snap.Revision() <= p.selRev {
		return
	}
	changes, ok := p.doc.ChangesSince(p.selRev)
	if ok {
		changes = upTo(changes, snap.Revision())
		ok = p.sel.Transform(changes)
	}
	if !ok {
		if !p.sel.IsEmpty() {
			p.log.Warn("selection cleared: cannot follow edits since revision %d", p.selRev)
		}
		p.sel.Clear()
	}
	p.sel.Clamp(snap.Len())
	p.selRev = snap.Revision()
}

// upTo truncates changes after the one producing rev.
func upTo(changes []document.Change, rev document.RevisionID) []document.Change {
	for i, c := range changes {
		if c.After == rev {
			return changes[:i+1]
		}
	}
	return changes
}
