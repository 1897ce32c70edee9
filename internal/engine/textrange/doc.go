// Package textrange implements text ranges and the provider that creates
// them.
//
// A TextRange is a [start, end) span of a document captured at one
// revision. Ranges are cheap values behind a pointer: mutating operations
// change the receiver in place, and Clone gives an independent copy.
// Once the document is edited every existing range is stale, and all of
// its operations fail with an InvalidOperation error wrapping
// document.ErrStale.
//
// Basic usage:
//
//	p := textrange.NewProvider(doc)
//	r := p.DocumentRange()
//
//	r.Move(unit.Word, 2)               // collapse two words in
//	r.ExpandToEnclosingUnit(unit.Word) // select that word
//	text, _ := r.GetText(-1)
//
//	found, err := r.FindText("abc", false, true)
//	if err == nil && found == nil {
//	    // no match
//	}
//
// Errors carry an errkind.Kind; test them with errors.Is.
package textrange
