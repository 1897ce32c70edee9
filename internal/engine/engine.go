package engine

import (
	"fmt"

	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/engine/textrange"
	"github.com/dshills/textnav/internal/engine/unit"
	"github.com/dshills/textnav/internal/logging"
)

// Capability names an interface a host element may expose.
type Capability uint8

const (
	CapabilityText Capability = iota
	CapabilityValue
	CapabilityScroll
	CapabilityInvoke
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case CapabilityText:
		return "text"
	case CapabilityValue:
		return "value"
	case CapabilityScroll:
		return "scroll"
	case CapabilityInvoke:
		return "invoke"
	default:
		return fmt.Sprintf("capability(%d)", c)
	}
}

// Element is a text control: a document together with the resolver,
// viewport and element tree its ranges consult.
//
// Element is safe for concurrent use to the extent its parts are; see
// textrange.Provider for the selection caveat.
type Element struct {
	doc      *document.Document
	resolver *unit.Resolver
	grid     *layout.Grid
	provider *textrange.Provider

	// construction state
	lineEnding document.Option
	docOpts    []document.Option
	unitOpts   []unit.Option
	gridOpts   []layout.GridOption
	viewport   layout.Viewport
	tree       element.Tree
	root       *element.Element
	mode       selection.Mode
	log        *logging.Logger
}

// New creates a text element holding text.
func New(text string, opts ...Option) (*Element, error) {
	e := &Element{mode: selection.Single}
	for _, opt := range opts {
		opt(e)
	}

	docOpts := e.docOpts
	if e.lineEnding != nil {
		docOpts = append([]document.Option{e.lineEnding}, docOpts...)
	}
	doc, err := document.New(text, docOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	e.doc = doc

	e.resolver = unit.NewResolver(append(e.unitOpts, unit.WithLogger(e.log))...)
	if e.viewport == nil {
		e.grid = layout.NewGrid(e.resolver, e.gridOpts...)
		e.viewport = e.grid
	}
	if e.root == nil {
		e.root = element.New("document", "document")
	}

	popts := []textrange.Option{
		textrange.WithResolver(e.resolver),
		textrange.WithViewport(e.viewport),
		textrange.WithRoot(e.root),
		textrange.WithSelectionMode(e.mode),
		textrange.WithLogger(e.log),
	}
	if e.tree != nil {
		popts = append(popts, textrange.WithTree(e.tree))
	}
	e.provider = textrange.NewProvider(doc, popts...)

	e.log.WithComponent("engine").Debug("element %s ready: %d characters, selection %s",
		doc.ID(), doc.Len(), e.mode)

	e.docOpts, e.unitOpts, e.gridOpts = nil, nil, nil
	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(text string, opts ...Option) *Element {
	e, err := New(text, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Supports reports whether the element exposes capability c. For
// CapabilityText it also returns the range provider.
func (e *Element) Supports(c Capability) (*textrange.Provider, bool) {
	if c != CapabilityText {
		return nil, false
	}
	return e.provider, true
}

// Document returns the underlying document. Editing it makes existing
// ranges stale.
func (e *Element) Document() *document.Document {
	return e.doc
}

// Resolver returns the unit resolver.
func (e *Element) Resolver() *unit.Resolver {
	return e.resolver
}

// Viewport returns the geometry collaborator.
func (e *Element) Viewport() layout.Viewport {
	return e.viewport
}

// Grid returns the default viewport, or false if WithViewport replaced it.
func (e *Element) Grid() (*layout.Grid, bool) {
	return e.grid, e.grid != nil
}

// Root returns the element identity of the whole control.
func (e *Element) Root() *element.Element {
	return e.root
}
