// Package document provides the text document the navigation engine
// queries: a character buffer, per-kind attribute runs and child element
// spans.
//
// Offsets count Unicode code points. A Document is safe for concurrent
// use; readers that need a consistent view across several calls take a
// Snapshot, which never changes even if the document is edited later.
//
// Every edit creates a new RevisionID. Ranges remember the revision they
// were created at and treat any mismatch as staleness.
//
// Basic usage:
//
//	doc, err := document.New("Hello, World!",
//	    document.WithAttribute(attr.FontName, "Segoe UI"),
//	    document.WithRun(attr.FontName, 7, 12, "Consolas"),
//	)
//
//	snap := doc.Snapshot()
//	text := snap.Slice(0, 5) // "Hello"
//
//	doc.Insert(5, ",")      // bumps the revision
//	changes, ok := doc.ChangesSince(snap.Revision())
//
// Edits keep attribute runs and child spans consistent: inserted text takes
// the attributes of the character to its left, and child spans shift or
// shrink with the text they cover.
package document
