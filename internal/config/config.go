package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dshills/textnav/internal/config/loader"
	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/layout"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/engine/unit"
	"github.com/dshills/textnav/internal/logging"
)

// Config holds every textnav setting.
type Config struct {
	Units     UnitsConfig
	Layout    LayoutConfig
	Selection SelectionConfig
	Journal   JournalConfig
	Logging   LoggingConfig
}

// UnitsConfig controls the text units the resolver supports.
type UnitsConfig struct {
	// Supported lists unit names. Units left out fall back to larger ones.
	Supported []string
	// PageLines paginates every n lines; 0 makes pages follow paragraphs.
	PageLines int
	// WrapWidth soft-wraps lines at this many cells; 0 disables wrapping.
	WrapWidth int
}

// LayoutConfig describes the character-cell viewport.
type LayoutConfig struct {
	CellWidth  float64
	CellHeight float64
	OriginX    float64
	OriginY    float64
	Rows       int
	Columns    int
	TabWidth   int
}

// SelectionConfig holds the selection mode name.
type SelectionConfig struct {
	Mode string
}

// JournalConfig bounds the change journal of a document.
type JournalConfig struct {
	MaxChanges int
}

// LoggingConfig holds the log level name.
type LoggingConfig struct {
	Level string
}

// Default returns the built-in configuration.
func Default() *Config {
	names := make([]string, 0, unit.Count)
	for _, u := range unit.All() {
		names = append(names, u.String())
	}
	return &Config{
		Units: UnitsConfig{Supported: names},
		Layout: LayoutConfig{
			CellWidth:  layout.DefaultCellWidth,
			CellHeight: layout.DefaultCellHeight,
			Rows:       layout.DefaultRows,
			Columns:    layout.DefaultColumns,
			TabWidth:   layout.DefaultTabWidth,
		},
		Selection: SelectionConfig{Mode: selection.Single.String()},
		Journal:   JournalConfig{MaxChanges: document.DefaultJournalSize},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load builds a configuration from the defaults, the TOML file at path
// (skipped when path is empty) and TEXTNAV_ environment variables, in
// increasing precedence.
func Load(path string) (*Config, error) {
	sources := make([]loader.Loader, 0, 2)
	if path != "" {
		sources = append(sources, loader.NewTOMLLoader(path))
	}
	sources = append(sources, loader.NewEnvLoader(loader.DefaultEnvPrefix))
	return LoadFrom(sources...)
}

// LoadFrom layers sources over the defaults, later sources winning, and
// validates the result.
func LoadFrom(sources ...loader.Loader) (*Config, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg := Default()
	if err := cfg.Apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type setter func(c *Config, path string, v any) error

var settings = map[string]setter{
	"units.supported":     stringsSetter(func(c *Config) *[]string { return &c.Units.Supported }),
	"units.page_lines":    intSetter(func(c *Config) *int { return &c.Units.PageLines }),
	"units.wrap_width":    intSetter(func(c *Config) *int { return &c.Units.WrapWidth }),
	"layout.cell_width":   floatSetter(func(c *Config) *float64 { return &c.Layout.CellWidth }),
	"layout.cell_height":  floatSetter(func(c *Config) *float64 { return &c.Layout.CellHeight }),
	"layout.origin_x":     floatSetter(func(c *Config) *float64 { return &c.Layout.OriginX }),
	"layout.origin_y":     floatSetter(func(c *Config) *float64 { return &c.Layout.OriginY }),
	"layout.rows":         intSetter(func(c *Config) *int { return &c.Layout.Rows }),
	"layout.columns":      intSetter(func(c *Config) *int { return &c.Layout.Columns }),
	"layout.tab_width":    intSetter(func(c *Config) *int { return &c.Layout.TabWidth }),
	"selection.mode":      stringSetter(func(c *Config) *string { return &c.Selection.Mode }),
	"journal.max_changes": intSetter(func(c *Config) *int { return &c.Journal.MaxChanges }),
	"logging.level":       stringSetter(func(c *Config) *string { return &c.Logging.Level }),
}

// Settings returns every known setting path, sorted.
func Settings() []string {
	out := make([]string, 0, len(settings))
	for p := range settings {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Apply sets the values of a nested section map onto c.
func (c *Config) Apply(data map[string]any) error {
	sections := make([]string, 0, len(data))
	for s := range data {
		sections = append(sections, s)
	}
	sort.Strings(sections)

	for _, section := range sections {
		values, ok := data[section].(map[string]any)
		if !ok {
			return &ValidationError{Path: section, Message: "expected a table", Value: data[section], Code: ErrCodeUnknownSetting}
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := c.Set(section+"."+k, values[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Set assigns a single setting by its dotted path.
func (c *Config) Set(path string, value any) error {
	set, ok := settings[path]
	if !ok {
		return &ValidationError{Path: path, Message: "unknown setting", Value: value, Code: ErrCodeUnknownSetting}
	}
	return set(c, path, value)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if _, err := c.SupportedUnits(); err != nil {
		return err
	}
	if _, err := c.SelectionMode(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	nonNegative := []struct {
		path string
		v    int
	}{
		{"units.page_lines", c.Units.PageLines},
		{"units.wrap_width", c.Units.WrapWidth},
	}
	for _, n := range nonNegative {
		if n.v < 0 {
			return outOfRange(n.path, n.v, "must not be negative")
		}
	}

	positive := []struct {
		path string
		v    int
	}{
		{"layout.rows", c.Layout.Rows},
		{"layout.columns", c.Layout.Columns},
		{"layout.tab_width", c.Layout.TabWidth},
		{"journal.max_changes", c.Journal.MaxChanges},
	}
	for _, n := range positive {
		if n.v <= 0 {
			return outOfRange(n.path, n.v, "must be positive")
		}
	}
	if c.Layout.CellWidth <= 0 {
		return outOfRange("layout.cell_width", c.Layout.CellWidth, "must be positive")
	}
	if c.Layout.CellHeight <= 0 {
		return outOfRange("layout.cell_height", c.Layout.CellHeight, "must be positive")
	}
	return nil
}

// SupportedUnits returns the configured units.
func (c *Config) SupportedUnits() ([]unit.Unit, error) {
	out := make([]unit.Unit, 0, len(c.Units.Supported))
	for _, name := range c.Units.Supported {
		u, err := unit.Parse(name)
		if err != nil {
			return nil, &ValidationError{Path: "units.supported", Message: err.Error(), Value: name, Code: ErrCodeInvalidEnum}
		}
		out = append(out, u)
	}
	return out, nil
}

// SelectionMode returns the configured selection mode.
func (c *Config) SelectionMode() (selection.Mode, error) {
	m, err := selection.ParseMode(c.Selection.Mode)
	if err != nil {
		return selection.None, &ValidationError{Path: "selection.mode", Message: err.Error(), Value: c.Selection.Mode, Code: ErrCodeInvalidEnum}
	}
	return m, nil
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() (logging.Level, error) {
	l, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.LevelInfo, &ValidationError{Path: "logging.level", Message: err.Error(), Value: c.Logging.Level, Code: ErrCodeInvalidEnum}
	}
	return l, nil
}

// ResolverOptions returns the unit resolver options for c. c must be valid.
func (c *Config) ResolverOptions() []unit.Option {
	units, _ := c.SupportedUnits()
	return []unit.Option{
		unit.WithUnits(units...),
		unit.WithPageLines(c.Units.PageLines),
		unit.WithWrapWidth(c.Units.WrapWidth),
	}
}

// GridOptions returns the viewport grid options for c.
func (c *Config) GridOptions() []layout.GridOption {
	return []layout.GridOption{
		layout.WithCellSize(c.Layout.CellWidth, c.Layout.CellHeight),
		layout.WithOrigin(layout.Point{X: c.Layout.OriginX, Y: c.Layout.OriginY}),
		layout.WithSize(c.Layout.Rows, c.Layout.Columns),
		layout.WithTabWidth(c.Layout.TabWidth),
	}
}

// DocumentOptions returns the document options for c.
func (c *Config) DocumentOptions() []document.Option {
	return []document.Option{document.WithJournalSize(c.Journal.MaxChanges)}
}

func outOfRange(path string, v any, msg string) error {
	return &ValidationError{Path: path, Message: msg, Value: v, Code: ErrCodeOutOfRange}
}

func mismatch(path string, v any, want string) error {
	return &ValidationError{Path: path, Message: fmt.Sprintf("expected %s, got %T", want, v), Value: v, Code: ErrCodeTypeMismatch}
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, path string, v any) error {
		switch n := v.(type) {
		case int:
			*field(c) = n
		case int64:
			*field(c) = int(n)
		case float64:
			if n != math.Trunc(n) {
				return mismatch(path, v, "an integer")
			}
			*field(c) = int(n)
		default:
			return mismatch(path, v, "an integer")
		}
		return nil
	}
}

func floatSetter(field func(*Config) *float64) setter {
	return func(c *Config, path string, v any) error {
		switch n := v.(type) {
		case float64:
			*field(c) = n
		case int64:
			*field(c) = float64(n)
		case int:
			*field(c) = float64(n)
		default:
			return mismatch(path, v, "a number")
		}
		return nil
	}
}

func stringSetter(field func(*Config) *string) setter {
	return func(c *Config, path string, v any) error {
		s, ok := v.(string)
		if !ok {
			return mismatch(path, v, "a string")
		}
		*field(c) = s
		return nil
	}
}

// stringsSetter accepts a list of strings or a comma-separated string.
func stringsSetter(field func(*Config) *[]string) setter {
	return func(c *Config, path string, v any) error {
		var out []string
		switch list := v.(type) {
		case string:
			for _, s := range strings.Split(list, ",") {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		case []string:
			out = append(out, list...)
		case []any:
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return mismatch(path, v, "a list of strings")
				}
				out = append(out, s)
			}
		default:
			return mismatch(path, v, "a list of strings")
		}
		*field(c) = out
		return nil
	}
}
