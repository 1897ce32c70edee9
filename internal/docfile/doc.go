// Package docfile reads documents from fixture files and keeps them in
// sync with the file.
//
// A fixture is YAML, JSON or TOML (chosen by extension); any other file
// is taken as plain text. In YAML:
//
//	text: "Hello, World!"
//	line_ending: lf
//	attributes:
//	  font_name:
//	    default: Segoe UI
//	    runs:
//	      - {start: 7, end: 12, value: Consolas}
//	children:
//	  - {name: world, role: hyperlink, start: 7, end: 12}
//
// Attribute names are the registered attr kind names; values are parsed
// by the kind. Offsets refer to the text after line-ending normalization.
//
// A Watcher resets the document when the file changes, which makes every
// existing range over it stale.
package docfile
