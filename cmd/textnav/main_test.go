package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/textnav/internal/config"
	"github.com/dshills/textnav/internal/engine/errkind"
	"github.com/dshills/textnav/internal/logging"
	"github.com/dshills/textnav/internal/script"
)

func TestEncodeResults(t *testing.T) {
	data, err := encodeResults([]script.Result{
		{Key: "z", Value: 1},
		{Key: "a.b", Value: "nested"},
		{Key: "range", Value: map[string]any{"start": 0, "end": 3, "text": "abc"}},
	})
	if err != nil {
		t.Fatalf("encodeResults failed: %v", err)
	}
	if got := gjson.GetBytes(data, "a.b").String(); got != "nested" {
		t.Errorf("a.b = %q", got)
	}
	if got := gjson.GetBytes(data, "range.text").String(); got != "abc" {
		t.Errorf("range.text = %q", got)
	}
	var keys []string
	gjson.ParseBytes(data).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	if len(keys) != 3 || keys[0] != "z" {
		t.Errorf("keys = %v, want emit order", keys)
	}

	if _, err := encodeResults([]script.Result{{Key: ""}}); err == nil {
		t.Error("expected an error for an empty key")
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "note.yaml")
	fixture := "text: |-\n  Hello, World!\nattributes:\n  is_italic:\n    default: false\n    runs:\n      - {start: 7, end: 12, value: true}\n"
	if err := os.WriteFile(doc, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	el, err := openElement(config.Default(), doc, logging.Nop())
	if err != nil {
		t.Fatalf("openElement failed: %v", err)
	}

	var out bytes.Buffer
	opts := options{Expr: `emit("italic", doc.range():find_attribute("is_italic", true):text())`}
	if err := runScript(context.Background(), el, opts, logging.Nop(), &out); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}
	if got := gjson.Get(out.String(), "italic").String(); got != "World" {
		t.Errorf("italic = %q (output %s)", got, out.String())
	}

	out.Reset()
	opts.Expr = `doc.range():find_text(nil)`
	err = runScript(context.Background(), el, opts, logging.Nop(), &out)
	if errkind.Of(err) != errkind.NullArgument {
		t.Errorf("expected NullArgument, got %v", err)
	}
}

func TestOpenElementErrors(t *testing.T) {
	if _, err := openElement(config.Default(), filepath.Join(t.TempDir(), "missing.yaml"), logging.Nop()); err == nil {
		t.Error("expected an error for a missing fixture")
	}
	el, err := openElement(config.Default(), "", logging.Nop())
	if err != nil {
		t.Fatalf("openElement failed: %v", err)
	}
	if el.Document().Len() != 0 {
		t.Errorf("expected an empty document")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "warn"
	var buf bytes.Buffer
	log, err := newLogger(cfg, &buf)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("log output = %q", out)
	}

	cfg.Logging.Level = "chatty"
	if _, err := newLogger(cfg, &buf); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
