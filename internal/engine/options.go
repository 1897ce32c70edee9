package engine

import (
	"github.com/dshills/textnav/internal/config"
	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/engine/unit"
	"github.com/dshills/textnav/internal/logging"
)

// Option configures an Element during creation.
type Option func(*Element)

// WithAttribute defines kind over the whole text with value base.
func WithAttribute(kind *attr.Kind, base any) Option {
	return WithDocumentOptions(document.WithAttribute(kind, base))
}

// WithRun sets kind to value over [start,end).
func WithRun(kind *attr.Kind, start, end int, value any) Option {
	return WithDocumentOptions(document.WithRun(kind, start, end, value))
}

// WithChild places a child element over [start,end).
func WithChild(el *element.Element, start, end int) Option {
	return WithDocumentOptions(document.WithChild(el, start, end))
}

// WithLineEnding normalizes line endings. Unlike document.WithLineEnding
// it may appear anywhere in the option list.
func WithLineEnding(le document.LineEnding) Option {
	return func(e *Element) {
		e.lineEnding = document.WithLineEnding(le)
	}
}

// WithReadOnly rejects edits to the document.
func WithReadOnly() Option {
	return WithDocumentOptions(document.WithReadOnly())
}

// WithDocumentOptions passes options straight to document.New.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(e *Element) {
		e.docOpts = append(e.docOpts, opts...)
	}
}

// WithSelectionMode sets the selection mode the element supports.
func WithSelectionMode(m selection.Mode) Option {
	return func(e *Element) {
		e.mode = m
	}
}

// WithUnits restricts the supported text units.
func WithUnits(units ...unit.Unit) Option {
	return func(e *Element) {
		e.unitOpts = append(e.unitOpts, unit.WithUnits(units...))
	}
}

// WithPageLines paginates every n lines.
func WithPageLines(n int) Option {
	return func(e *Element) {
		e.unitOpts = append(e.unitOpts, unit.WithPageLines(n))
	}
}

// WithWrapWidth soft-wraps lines at w cells.
func WithWrapWidth(w int) Option {
	return func(e *Element) {
		e.unitOpts = append(e.unitOpts, unit.WithWrapWidth(w))
	}
}

// WithGrid configures the default character-cell viewport.
func WithGrid(opts ...layout.GridOption) Option {
	return func(e *Element) {
		e.gridOpts = append(e.gridOpts, opts...)
	}
}

// WithViewport replaces the default grid viewport.
func WithViewport(v layout.Viewport) Option {
	return func(e *Element) {
		e.viewport = v
	}
}

// WithTree replaces the default element tree built from child spans.
func WithTree(t element.Tree) Option {
	return func(e *Element) {
		e.tree = t
	}
}

// WithRoot sets the element identity of the whole text control.
func WithRoot(root *element.Element) Option {
	return func(e *Element) {
		if root != nil {
			e.root = root
		}
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(l *logging.Logger) Option {
	return func(e *Element) {
		e.log = l
	}
}

// WithConfig applies a validated configuration. Options after it override
// the values it sets.
func WithConfig(cfg *config.Config) Option {
	return func(e *Element) {
		if cfg == nil {
			return
		}
		e.unitOpts = append(e.unitOpts, cfg.ResolverOptions()...)
		e.gridOpts = append(e.gridOpts, cfg.GridOptions()...)
		e.docOpts = append(e.docOpts, cfg.DocumentOptions()...)
		if m, err := cfg.SelectionMode(); err == nil {
			e.mode = m
		}
	}
}
