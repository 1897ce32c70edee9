// Package attr models text attributes: the kinds a document can carry,
// their typed values and the runs that partition a document per kind.
//
// Each attribute kind is a *Kind value exported by this package. A nil
// *Kind is how callers express "no kind", which the range API rejects as a
// null argument. Values are plain Go values whose dynamic type must match
// the kind (see Kind.Check).
//
// Two sentinels stand in for values:
//
//   - NotSupported: the document never populates the kind.
//   - Mixed: the queried span covers more than one value.
package attr

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/language"

	"github.com/dshills/textnav/internal/engine/errkind"
)

// Sentinel is a marker attribute value.
type Sentinel string

const (
	// NotSupported is returned for kinds the document never defines.
	NotSupported Sentinel = "NotSupported"

	// Mixed is returned when a span covers runs with different values.
	Mixed Sentinel = "Mixed"
)

// ErrWrongType indicates a value whose Go type does not match its kind.
var ErrWrongType = errkind.New(errkind.InvalidArgument, "attribute value has wrong type")

// UnderlineStyle is the value type of the Underline kind.
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineDotted
	UnderlineWavy
)

var underlineNames = map[string]UnderlineStyle{
	"none":   UnderlineNone,
	"single": UnderlineSingle,
	"double": UnderlineDouble,
	"dotted": UnderlineDotted,
	"wavy":   UnderlineWavy,
}

// String returns the style name.
func (u UnderlineStyle) String() string {
	for name, v := range underlineNames {
		if v == u {
			return name
		}
	}
	return "unknown"
}

// Alignment is the value type of the HorizontalAlignment kind.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustified
)

var alignmentNames = map[string]Alignment{
	"left":      AlignLeft,
	"center":    AlignCenter,
	"right":     AlignRight,
	"justified": AlignJustified,
}

// String returns the alignment name.
func (a Alignment) String() string {
	for name, v := range alignmentNames {
		if v == a {
			return name
		}
	}
	return "unknown"
}

// Kind identifies an attribute and the Go type of its values.
type Kind struct {
	name  string
	typ   reflect.Type
	parse func(raw any) (any, error)
}

// Name returns the kind's identifier as used in fixtures and scripts.
func (k *Kind) Name() string {
	return k.name
}

// Type returns the Go type values of this kind must have.
func (k *Kind) Type() reflect.Type {
	return k.typ
}

// String returns the kind name.
func (k *Kind) String() string {
	return k.name
}

// Check reports ErrWrongType if v is not of the kind's value type.
func (k *Kind) Check(v any) error {
	if reflect.TypeOf(v) != k.typ {
		return ErrWrongType
	}
	return nil
}

// Parse converts a loosely typed value (as decoded from YAML, JSON or
// TOML) into the kind's value type.
func (k *Kind) Parse(raw any) (any, error) {
	if raw == nil {
		return nil, fmt.Errorf("%s: missing value", k.name)
	}
	if reflect.TypeOf(raw) == k.typ {
		return raw, nil
	}
	v, err := k.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.name, err)
	}
	return v, nil
}

// Standard attribute kinds.
var (
	FontName            = register("font_name", "", parseString)
	FontSize            = register("font_size", float64(0), parseFloat)
	FontWeight          = register("font_weight", int(0), parseInt)
	IsItalic            = register("is_italic", false, parseBool)
	IsHidden            = register("is_hidden", false, parseBool)
	IsReadOnly          = register("is_read_only", false, parseBool)
	IsSubscript         = register("is_subscript", false, parseBool)
	IsSuperscript       = register("is_superscript", false, parseBool)
	StyleName           = register("style_name", "", parseString)
	ForegroundColor     = register("foreground_color", colorful.Color{}, parseColor)
	BackgroundColor     = register("background_color", colorful.Color{}, parseColor)
	Underline           = register("underline", UnderlineNone, parseUnderline)
	HorizontalAlignment = register("horizontal_alignment", AlignLeft, parseAlignment)
	Culture             = register("culture", language.Und, parseCulture)
)

var registry = map[string]*Kind{}

func register(name string, zero any, parse func(any) (any, error)) *Kind {
	k := &Kind{name: name, typ: reflect.TypeOf(zero), parse: parse}
	registry[name] = k
	return k
}

// Lookup returns the kind registered under name.
func Lookup(name string) (*Kind, bool) {
	k, ok := registry[strings.ToLower(name)]
	return k, ok
}

// Kinds returns all registered kinds sorted by name.
func Kinds() []*Kind {
	kinds := make([]*Kind, 0, len(registry))
	for _, k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].name < kinds[j].name
	})
	return kinds
}

// Equal reports whether two attribute values are the same.
func Equal(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	switch av := a.(type) {
	case language.Tag:
		return av.String() == b.(language.Tag).String()
	case nil:
		return true
	}
	if !reflect.TypeOf(a).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func parseString(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	return s, nil
}

func parseFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("expected number, got %T", raw)
}

func parseInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("expected integer, got %v", v)
		}
		return int(v), nil
	}
	return nil, fmt.Errorf("expected integer, got %T", raw)
}

func parseBool(raw any) (any, error) {
	b, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %T", raw)
	}
	return b, nil
}

func parseColor(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected hex color string, got %T", raw)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func parseCulture(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected language tag, got %T", raw)
	}
	tag, err := language.Parse(s)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func parseUnderline(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected underline style name, got %T", raw)
	}
	u, ok := underlineNames[strings.ToLower(s)]
	if !ok {
		return nil, fmt.Errorf("unknown underline style %q", s)
	}
	return u, nil
}

func parseAlignment(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected alignment name, got %T", raw)
	}
	a, ok := alignmentNames[strings.ToLower(s)]
	if !ok {
		return nil, fmt.Errorf("unknown alignment %q", s)
	}
	return a, nil
}
