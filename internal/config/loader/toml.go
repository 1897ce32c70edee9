package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// MaxIncludeDepth bounds nested include directives.
const MaxIncludeDepth = 8

// ErrIncludeDepth is returned when includes nest deeper than MaxIncludeDepth.
var ErrIncludeDepth = errors.New("include depth exceeded")

// TOMLLoader loads configuration from a TOML file. A top-level
// include = "other.toml" (or a list of paths) pulls in files that the
// including file overrides.
type TOMLLoader struct {
	fs       FileSystem
	path     string
	optional bool
}

// NewTOMLLoader creates a loader for path. A missing file is an error.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{fs: DefaultFS(), path: path}
}

// NewOptionalTOMLLoader creates a loader for which a missing file yields
// no settings.
func NewOptionalTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{fs: DefaultFS(), path: path, optional: true}
}

// WithFS replaces the file system used to read files.
func (l *TOMLLoader) WithFS(fs FileSystem) *TOMLLoader {
	l.fs = fs
	return l
}

// Load reads the configured file and its includes.
func (l *TOMLLoader) Load() (map[string]any, error) {
	data, err := l.load(l.path, MaxIncludeDepth)
	if err != nil && l.optional && errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (l *TOMLLoader) load(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrIncludeDepth)
	}
	raw, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	data, err := Parse(path, raw)
	if err != nil {
		return nil, err
	}

	includes, ok := data["include"]
	if !ok {
		return data, nil
	}
	delete(data, "include")

	var list []string
	switch v := includes.(type) {
	case string:
		list = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ParseError{Path: path, Message: "include must be a string or a list of strings"}
			}
			list = append(list, s)
		}
	default:
		return nil, &ParseError{Path: path, Message: fmt.Sprintf("include must be a string or a list of strings, got %T", includes)}
	}

	merged := make(map[string]any)
	for _, inc := range list {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		sub, err := l.load(inc, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		merged = DeepMerge(merged, sub)
	}
	return DeepMerge(merged, data), nil
}

// Parse decodes TOML data read from source.
func Parse(source string, data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
