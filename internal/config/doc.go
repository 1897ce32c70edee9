// Package config loads textnav settings.
//
// Settings come from three layers, later layers winning:
//
//	1. built-in defaults (Default)
//	2. a TOML file, which may include other TOML files
//	3. TEXTNAV_ environment variables
//
// A file looks like:
//
//	[units]
//	supported = ["character", "word", "line", "paragraph"]
//	page_lines = 40
//	wrap_width = 0
//
//	[layout]
//	cell_width = 8.0
//	cell_height = 16.0
//	rows = 24
//	columns = 80
//	tab_width = 4
//
//	[selection]
//	mode = "multiple"
//
//	[journal]
//	max_changes = 256
//
//	[logging]
//	level = "debug"
//
// The environment variable for a setting is the prefix followed by its
// upper-cased section and name: TEXTNAV_UNITS_PAGE_LINES=40. TEXTNAV_LOG
// and TEXTNAV_LOG_LEVEL set logging.level; TEXTNAV_SELECTION sets
// selection.mode.
//
// The typed accessors (SupportedUnits, SelectionMode, LogLevel) and the
// option builders (ResolverOptions, GridOptions, DocumentOptions) turn a
// validated Config into options for the engine packages.
package config
