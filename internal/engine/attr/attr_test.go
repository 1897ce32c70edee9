package attr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/language"

	"github.com/dshills/textnav/internal/engine/errkind"
)

func TestKindCheck(t *testing.T) {
	tests := []struct {
		name    string
		kind    *Kind
		value   any
		wantErr bool
	}{
		{"string ok", FontName, "Consolas", false},
		{"string wrong", FontName, 12, true},
		{"float ok", FontSize, 11.5, false},
		{"float given int", FontSize, 11, true},
		{"bool ok", IsItalic, true, false},
		{"color ok", ForegroundColor, colorful.Color{R: 1}, false},
		{"color given string", ForegroundColor, "#ff0000", true},
		{"enum ok", Underline, UnderlineWavy, false},
		{"enum given int", Underline, 1, true},
		{"culture ok", Culture, language.English, false},
		{"nil value", IsHidden, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.kind.Check(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errkind.InvalidArgument) {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestKindParse(t *testing.T) {
	red, _ := colorful.Hex("#ff0000")
	tests := []struct {
		kind *Kind
		raw  any
		want any
	}{
		{FontName, "Segoe UI", "Segoe UI"},
		{FontSize, int64(12), float64(12)},
		{FontWeight, float64(700), 700},
		{ForegroundColor, "#ff0000", red},
		{Underline, "Double", UnderlineDouble},
		{HorizontalAlignment, "center", AlignCenter},
		{Culture, "fr-CA", language.MustParse("fr-CA")},
	}
	for _, tt := range tests {
		got, err := tt.kind.Parse(tt.raw)
		if err != nil {
			t.Fatalf("%s.Parse(%v): %v", tt.kind, tt.raw, err)
		}
		if !Equal(got, tt.want) {
			t.Errorf("%s.Parse(%v) = %v, want %v", tt.kind, tt.raw, got, tt.want)
		}
	}

	if _, err := FontWeight.Parse(1.5); err == nil {
		t.Errorf("expected error for fractional weight")
	}
	if _, err := Underline.Parse("squiggle"); err == nil {
		t.Errorf("expected error for unknown underline style")
	}
	if _, err := FontName.Parse(nil); err == nil {
		t.Errorf("expected error for nil")
	}
}

func TestLookup(t *testing.T) {
	k, ok := Lookup("Font_Name")
	if !ok || k != FontName {
		t.Fatalf("Lookup(Font_Name) = %v, %v", k, ok)
	}
	if _, ok := Lookup("no_such_kind"); ok {
		t.Errorf("expected miss")
	}
	if len(Kinds()) != len(registry) {
		t.Errorf("Kinds() returned %d kinds, want %d", len(Kinds()), len(registry))
	}
}

func TestEqual(t *testing.T) {
	if Equal("a", Sentinel("a")) {
		t.Errorf("string and sentinel must differ")
	}
	if !Equal(language.MustParse("en-US"), language.AmericanEnglish) {
		t.Errorf("equal tags should compare equal")
	}
	if !Equal(nil, nil) {
		t.Errorf("nil should equal nil")
	}
}

func TestRunsSet(t *testing.T) {
	rs := Uniform(10, "a")
	rs = rs.Set(2, 5, "b")
	rs = rs.Set(4, 8, "c")

	want := Runs{
		{Start: 0, End: 2, Value: "a"},
		{Start: 2, End: 4, Value: "b"},
		{Start: 4, End: 8, Value: "c"},
		{Start: 8, End: 10, Value: "a"},
	}
	if diff := cmp.Diff(want, rs); diff != "" {
		t.Errorf("Set mismatch (-want +got):\n%s", diff)
	}
	if err := rs.Validate(10); err != nil {
		t.Errorf("Validate: %v", err)
	}

	// Writing the surrounding value back merges runs.
	rs = rs.Set(2, 8, "a")
	if diff := cmp.Diff(Uniform(10, "a"), rs); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestRunsClipAndAt(t *testing.T) {
	rs := Uniform(9, 1).Set(3, 6, 2)

	got := rs.Clip(2, 7)
	want := Runs{
		{Start: 2, End: 3, Value: 1},
		{Start: 3, End: 6, Value: 2},
		{Start: 6, End: 7, Value: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Clip mismatch (-want +got):\n%s", diff)
	}
	if rs.Clip(4, 4) != nil {
		t.Errorf("degenerate clip should be nil")
	}

	r, ok := rs.At(9)
	if !ok || r.Value != 1 || r.Start != 6 {
		t.Errorf("At(end) = %v, %v", r, ok)
	}
	if _, ok := Runs(nil).At(0); ok {
		t.Errorf("At on empty runs should miss")
	}
	if diff := cmp.Diff([]int{3, 6}, rs.Boundaries()); diff != "" {
		t.Errorf("Boundaries mismatch (-want +got):\n%s", diff)
	}
}

func TestRunsSplice(t *testing.T) {
	base := Uniform(6, "x").Set(3, 6, "y") // xxxyyy

	tests := []struct {
		name               string
		start, end, newLen int
		want               Runs
	}{
		{
			name: "insert inside run inherits left",
			start: 1, end: 1, newLen: 2,
			want: Runs{{0, 5, "x"}, {5, 8, "y"}},
		},
		{
			name: "insert at boundary inherits left run",
			start: 3, end: 3, newLen: 1,
			want: Runs{{0, 4, "x"}, {4, 7, "y"}},
		},
		{
			name: "insert at zero inherits first run",
			start: 0, end: 0, newLen: 1,
			want: Runs{{0, 4, "x"}, {4, 7, "y"}},
		},
		{
			name: "delete across boundary",
			start: 2, end: 4, newLen: 0,
			want: Runs{{0, 2, "x"}, {2, 4, "y"}},
		},
		{
			name: "delete whole run",
			start: 3, end: 6, newLen: 0,
			want: Runs{{0, 3, "x"}},
		},
		{
			name: "replace across boundary",
			start: 2, end: 5, newLen: 1,
			want: Runs{{0, 3, "x"}, {3, 4, "y"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Splice(tt.start, tt.end, tt.newLen, "base")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Splice mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(6 + tt.newLen - (tt.end - tt.start)); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}

	got := Runs(nil).Splice(0, 0, 3, "base")
	if diff := cmp.Diff(Uniform(3, "base"), got); diff != "" {
		t.Errorf("empty splice mismatch (-want +got):\n%s", diff)
	}
}

func TestRunsValidate(t *testing.T) {
	if err := (Runs{{0, 2, "a"}, {3, 4, "b"}}).Validate(4); err == nil {
		t.Errorf("expected gap error")
	}
	if err := (Runs{{0, 2, "a"}}).Validate(4); err == nil {
		t.Errorf("expected short coverage error")
	}
	if err := Runs(nil).Validate(0); err != nil {
		t.Errorf("empty runs over empty text: %v", err)
	}
}
