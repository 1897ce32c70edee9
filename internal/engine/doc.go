// Package engine assembles a text navigation element.
//
// An Element bundles a document with the collaborators its text ranges
// need: a unit resolver for boundaries, a viewport for geometry and an
// element tree for enclosing and child lookups. Hosts ask an element for
// its text capability and work with the returned provider:
//
//	el, err := engine.New("Hello, World!\nSecond line.",
//	    engine.WithAttribute(attr.FontName, "Segoe UI"),
//	    engine.WithRun(attr.FontName, 7, 12, "Consolas"),
//	    engine.WithSelectionMode(selection.Multiple),
//	)
//	if err != nil {
//	    return err
//	}
//
//	p, ok := el.Supports(engine.CapabilityText)
//	if !ok {
//	    return errNoText
//	}
//
//	r := p.DocumentRange()
//	r.Move(unit.Word, 1)
//	r.ExpandToEnclosingUnit(unit.Word)
//	word, _ := r.GetText(-1)
//
// # Configuration
//
// WithConfig applies a config.Config: supported units, pagination, wrap
// width, grid geometry, selection mode and journal size. Options listed
// after it override what it sets.
//
// # Edits
//
// Document returns the underlying document. Every edit bumps its revision,
// after which all earlier ranges fail with an InvalidOperation error
// wrapping ErrStale. The provider carries its selection across edits.
package engine
