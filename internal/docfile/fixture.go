package docfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/engine/element"
)

// Errors returned when reading fixtures.
var (
	ErrUnknownAttribute  = errors.New("unknown attribute")
	ErrUnknownLineEnding = errors.New("unknown line ending")
	ErrInvalidJSON       = errors.New("invalid JSON")
)

// Format identifies a fixture encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatYAML
	FormatJSON
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	default:
		return "text"
	}
}

// FormatOf picks the format from a file extension. Unknown extensions
// are read as plain text.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatText
	}
}

// Fixture describes a document: its text, attribute runs and child
// elements.
type Fixture struct {
	Text       string               `yaml:"text" toml:"text"`
	LineEnding string               `yaml:"line_ending" toml:"line_ending"`
	ReadOnly   bool                 `yaml:"read_only" toml:"read_only"`
	Attributes map[string]Attribute `yaml:"attributes" toml:"attributes"`
	Children   []Child              `yaml:"children" toml:"children"`
}

// Attribute is one attribute kind: a document-wide default and runs that
// override it.
type Attribute struct {
	Default any   `yaml:"default" toml:"default"`
	Runs    []Run `yaml:"runs" toml:"runs"`
}

// Run sets an attribute value over [Start, End).
type Run struct {
	Start int `yaml:"start" toml:"start"`
	End   int `yaml:"end" toml:"end"`
	Value any `yaml:"value" toml:"value"`
}

// Child places a named element over [Start, End).
type Child struct {
	Name  string `yaml:"name" toml:"name"`
	Role  string `yaml:"role" toml:"role"`
	Start int    `yaml:"start" toml:"start"`
	End   int    `yaml:"end" toml:"end"`
}

// ParseError reports a fixture that could not be read, decoded or applied.
type ParseError struct {
	Path  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("fixture %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("fixture %s: %s: %v", e.Path, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the fixture at path, choosing the format by extension.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	f, err := Parse(FormatOf(path), data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return f, nil
}

// Parse decodes a fixture.
func Parse(format Format, data []byte) (*Fixture, error) {
	var f Fixture
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, &ParseError{Path: "<yaml>", Err: err}
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, &ParseError{Path: "<toml>", Err: err}
		}
	case FormatJSON:
		if err := parseJSON(data, &f); err != nil {
			return nil, &ParseError{Path: "<json>", Err: err}
		}
	default:
		f.Text = string(data)
	}
	return &f, nil
}

func parseJSON(data []byte, f *Fixture) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("%w: top level must be an object", ErrInvalidJSON)
	}

	f.Text = root.Get("text").String()
	f.LineEnding = root.Get("line_ending").String()
	f.ReadOnly = root.Get("read_only").Bool()

	if attrs := root.Get("attributes"); attrs.Exists() {
		f.Attributes = make(map[string]Attribute)
		attrs.ForEach(func(name, def gjson.Result) bool {
			a := Attribute{Default: def.Get("default").Value()}
			def.Get("runs").ForEach(func(_, run gjson.Result) bool {
				a.Runs = append(a.Runs, Run{
					Start: int(run.Get("start").Int()),
					End:   int(run.Get("end").Int()),
					Value: run.Get("value").Value(),
				})
				return true
			})
			f.Attributes[name.String()] = a
			return true
		})
	}

	root.Get("children").ForEach(func(_, c gjson.Result) bool {
		f.Children = append(f.Children, Child{
			Name:  c.Get("name").String(),
			Role:  c.Get("role").String(),
			Start: int(c.Get("start").Int()),
			End:   int(c.Get("end").Int()),
		})
		return true
	})
	return nil
}

// ParseLineEnding converts a line ending name.
func ParseLineEnding(s string) (document.LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "as-is", "asis":
		return document.LineEndingAsIs, nil
	case "lf", "unix":
		return document.LineEndingLF, nil
	case "crlf", "windows":
		return document.LineEndingCRLF, nil
	case "cr", "mac":
		return document.LineEndingCR, nil
	}
	return document.LineEndingAsIs, fmt.Errorf("%w %q", ErrUnknownLineEnding, s)
}

// Options converts f into document options. Attributes are applied in
// name order; each kind's default precedes its runs.
func (f *Fixture) Options() ([]document.Option, error) {
	le, err := ParseLineEnding(f.LineEnding)
	if err != nil {
		return nil, &ParseError{Field: "line_ending", Err: err}
	}
	opts := []document.Option{document.WithLineEnding(le)}
	if f.ReadOnly {
		opts = append(opts, document.WithReadOnly())
	}

	names := make([]string, 0, len(f.Attributes))
	for name := range f.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kind, ok := attr.Lookup(name)
		if !ok {
			return nil, &ParseError{Field: "attributes." + name, Err: ErrUnknownAttribute}
		}
		a := f.Attributes[name]
		if a.Default != nil {
			v, err := kind.Parse(a.Default)
			if err != nil {
				return nil, &ParseError{Field: "attributes." + name + ".default", Err: err}
			}
			opts = append(opts, document.WithAttribute(kind, v))
		}
		for i, run := range a.Runs {
			v, err := kind.Parse(run.Value)
			if err != nil {
				return nil, &ParseError{Field: fmt.Sprintf("attributes.%s.runs[%d]", name, i), Err: err}
			}
			opts = append(opts, document.WithRun(kind, run.Start, run.End, v))
		}
	}

	for _, c := range f.Children {
		role := c.Role
		if role == "" {
			role = "group"
		}
		opts = append(opts, document.WithChild(element.New(c.Name, role), c.Start, c.End))
	}
	return opts, nil
}

// Open loads the fixture at path and creates its document.
func Open(path string, extra ...document.Option) (*document.Document, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	opts, err := f.Options()
	if err != nil {
		return nil, withPath(err, path)
	}
	doc, err := document.New(f.Text, append(opts, extra...)...)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return doc, nil
}

// withPath attaches path to err, wrapping it in a ParseError unless it
// already is one.
func withPath(err error, path string) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
		return err
	}
	return &ParseError{Path: path, Err: err}
}
