package script

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/textnav/internal/engine"
	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/element"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/engine/selection"
	"github.com/dshills/textnav/internal/enginetest"
)

func newState(t *testing.T, text string, opts ...engine.Option) *State {
	t.Helper()
	el, err := engine.New(text, opts...)
	enginetest.ExpectNoError(t, err)
	s, err := New(el)
	enginetest.ExpectNoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// results runs code and returns the emitted values by key.
func results(t *testing.T, s *State, code string) map[string]any {
	t.Helper()
	if err := s.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString failed: %v", err)
	}
	m := make(map[string]any)
	for _, r := range s.Results() {
		m[r.Key] = r.Value
	}
	return m
}

func TestScenarios(t *testing.T) {
	tc := enginetest.Default()
	tc.Framework = enginetest.FrameworkLua
	tc.Run(t, []enginetest.Case{
		{Name: "A document range", Run: func(t *testing.T) {
			got := results(t, newState(t, "String1"), `
				local r = doc.range()
				local s, e = r:span()
				emit("span", {s, e})
				emit("text", r:text(-1))
			`)
			want := map[string]any{"span": []any{0, 7}, "text": "String1"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		}},
		{Name: "B find forward and backward", Run: func(t *testing.T) {
			got := results(t, newState(t, "abcabc"), `
				local r = doc.range()
				emit("fwd", {r:find_text("abc", false, false):span()})
				emit("back", {r:find_text("abc", true, false):span()})
				emit("miss", r:find_text("xyz") == nil)
			`)
			want := map[string]any{"fwd": []any{0, 3}, "back": []any{3, 6}, "miss": true}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		}},
		{Name: "C empty document", Run: func(t *testing.T) {
			got := results(t, newState(t, ""), `
				local r = doc.range()
				emit("degenerate", r:is_degenerate())
				emit("rects", #r:rects())
				emit("text", r:text())
			`)
			want := map[string]any{"degenerate": true, "rects": 0, "text": ""}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		}},
		{Name: "D move by character", Run: func(t *testing.T) {
			got := results(t, newState(t, "OneTwoThr"), `
				local r = doc.range()
				emit("first", r:move("character", 5))
				emit("at", {r:span()})
				emit("clamped", r:move("character", 1000))
			`)
			want := map[string]any{"first": 5, "at": []any{5, 5}, "clamped": 4}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		}},
		{Name: "E null target range", Run: func(t *testing.T) {
			got := results(t, newState(t, "same"), `
				local r = doc.range()
				local ok, err = pcall(function()
					r:move_endpoint_by_range("start", nil, "end")
				end)
				emit("ok", ok)
				emit("kind", err.kind)
			`)
			want := map[string]any{"ok": false, "kind": "NullArgument"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
		}},
	})
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		code string
		want errkind.Kind
	}{
		{"nil find text", `doc.range():find_text(nil)`, errkind.NullArgument},
		{"unknown unit", `doc.range():move("sentence", 1)`, errkind.InvalidArgument},
		{"unknown endpoint", `local r = doc.range(); r:compare_endpoints("middle", r, "start")`, errkind.InvalidArgument},
		{"unknown attribute", `doc.range():attribute("sparkle")`, errkind.InvalidArgument},
		{"nil attribute value", `doc.range():find_attribute("is_italic", nil)`, errkind.NullArgument},
		{"bad attribute value", `doc.range():find_attribute("foreground_color", "not a color")`, errkind.InvalidArgument},
		{"nil point", `doc.from_point(nil, 3)`, errkind.NullArgument},
		{"unknown child", `doc.from_child("nothing*")`, errkind.InvalidOperation},
		{"insert out of range", `doc.insert(99, "x")`, errkind.OutOfRange},
		{"delete inverted", `doc.delete(5, 2)`, errkind.InvalidArgument},
		{"stale range", `local r = doc.range(); doc.insert(0, "x"); r:text()`, errkind.InvalidOperation},
		{"add under single", `doc.range():add_to_selection()`, errkind.InvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, "Hello, World!")
			err := s.DoString(context.Background(), tt.code)
			enginetest.ExpectKind(t, err, tt.want)

			var e *errkind.Error
			if !errors.As(err, &e) || e.Op != "script" {
				t.Errorf("expected a script error, got %#v", err)
			}
		})
	}
}

func TestPcallKinds(t *testing.T) {
	s := newState(t, "abc")
	got := results(t, s, `
		local r = doc.range()
		local ok, err = pcall(r.find_text, r, nil)
		emit("kind", err.kind)
		emit("message", tostring(err) ~= "")
		doc.insert(3, "d")
		ok, err = pcall(r.text, r)
		emit("stale", err.kind)
		emit("fresh", doc.range():text())
	`)
	want := map[string]any{
		"kind":    "NullArgument",
		"message": true,
		"stale":   "InvalidOperation",
		"fresh":   "abcd",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSelection(t *testing.T) {
	s := newState(t, "one two three", engine.WithSelectionMode(selection.Multiple))
	got := results(t, s, `
		local r = doc.range()
		local a = r:find_text("one")
		local b = r:find_text("three")
		a:select()
		b:add_to_selection()
		emit("mode", doc.selection_mode())
		local sel = doc.selection()
		emit("count", #sel)
		emit("second", sel[2])
		a:remove_from_selection()
		emit("after", #doc.selection())
	`)
	want := map[string]any{
		"mode":   "multiple",
		"count":  2,
		"second": map[string]any{"start": 8, "end": 13, "text": "three"},
		"after":  1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionModeNone(t *testing.T) {
	s := newState(t, "abc", engine.WithSelectionMode(selection.None))
	err := s.DoString(context.Background(), `doc.range():select()`)
	enginetest.ExpectKind(t, err, errkind.UnsupportedOperation)
}

func TestAttributes(t *testing.T) {
	s := newState(t, "plain italic",
		engine.WithAttribute(attr.IsItalic, false),
		engine.WithRun(attr.IsItalic, 6, 12, true),
		engine.WithAttribute(attr.FontName, "Mono"),
	)
	got := results(t, s, `
		local r = doc.range()
		local hit = r:find_attribute("is_italic", true)
		emit("italic", hit:text())
		emit("mixed", r:attribute("is_italic"))
		emit("font", r:attribute("font_name"))
		emit("unset", r:attribute("culture"))
	`)
	want := map[string]any{
		"italic": "italic",
		"mixed":  string(attr.Mixed),
		"font":   "Mono",
		"unset":  string(attr.NotSupported),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestChildren(t *testing.T) {
	s := newState(t, "Title\nBody text",
		engine.WithChild(element.New("heading", "header"), 0, 5),
		engine.WithChild(element.New("body", "paragraph"), 6, 15),
	)
	got := results(t, s, `
		emit("names", doc.children("*"))
		emit("heading", doc.from_child("head*"):text())
		emit("root", doc.from_child("document"):text())
		local r = doc.range()
		r:move_endpoint_by_unit("start", "line", 1)
		emit("enclosing", r:enclosing_element().name)
	`)
	names := got["names"].([]any)
	if len(names) != 2 {
		t.Fatalf("children = %v", names)
	}
	if n := names[0].(map[string]any)["name"]; n != "heading" {
		t.Errorf("first child = %v", n)
	}
	if got["heading"] != "Title" {
		t.Errorf("heading = %v", got["heading"])
	}
	if got["root"] != "Title\nBody text" {
		t.Errorf("root = %v", got["root"])
	}
	if got["enclosing"] != "body" {
		t.Errorf("enclosing = %v", got["enclosing"])
	}
}

func TestGeometry(t *testing.T) {
	s := newState(t, "ab\ncdef")
	got := results(t, s, `
		local p = doc.from_point(20, 20)
		emit("point", {p:span()})
		emit("visible", #doc.visible())
		local rects = doc.range():find_text("cd"):rects()
		emit("rect", rects[1])
	`)
	want := map[string]any{
		"point":   []any{5, 5},
		"visible": 2,
		"rect":    map[string]any{"x": 0, "y": 16, "width": 16, "height": 16},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestEditing(t *testing.T) {
	s := newState(t, "Hello World")
	got := results(t, s, `
		local rev = doc.revision()
		emit("end", doc.replace(6, 11, "Lua"))
		doc.delete(0, 1)
		doc.insert(0, "J")
		emit("text", doc.text())
		emit("length", doc.length())
		emit("changed", doc.revision() ~= rev)
	`)
	want := map[string]any{"end": 9, "text": "Jello Lua", "length": 9, "changed": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitStaleRange(t *testing.T) {
	s := newState(t, "abc")
	got := results(t, s, `
		local r = doc.range()
		doc.insert(0, "x")
		emit("r", r)
	`)
	want := map[string]any{"r": map[string]any{"start": 0, "end": 3, "stale": true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestPrint(t *testing.T) {
	el := engine.MustNew("abc")
	var buf bytes.Buffer
	s, err := New(el, WithOutput(&buf))
	enginetest.ExpectNoError(t, err)
	defer s.Close()

	enginetest.ExpectNoError(t, s.DoString(context.Background(), `print("range", doc.range())`))
	if got := buf.String(); got != "range\tTextRange[0,3)@"+revString(el)+"\n" {
		t.Errorf("print wrote %q", got)
	}
}

func revString(el *engine.Element) string {
	return fmt.Sprintf("%d", el.Document().Revision())
}

func TestSandbox(t *testing.T) {
	s := newState(t, "abc")
	for _, lib := range []string{"io", "os", "debug"} {
		got := results(t, s, `emit("lib", `+lib+` == nil)`)
		if got["lib"] != true {
			t.Errorf("%s library is open", lib)
		}
	}
}

func TestTimeout(t *testing.T) {
	el := engine.MustNew("abc")
	s, err := New(el, WithTimeout(50*time.Millisecond))
	enginetest.ExpectNoError(t, err)
	defer s.Close()

	err = s.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.lua")
	if err := os.WriteFile(path, []byte(`emit("n", doc.length())`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newState(t, "four")
	enginetest.ExpectNoError(t, s.DoFile(context.Background(), path))
	if diff := cmp.Diff([]Result{{Key: "n", Value: 4}}, s.Results()); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestClosed(t *testing.T) {
	s, err := New(engine.MustNew("abc"))
	enginetest.ExpectNoError(t, err)
	s.Close()
	s.Close()
	if err := s.DoString(context.Background(), `emit("x", 1)`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
}
