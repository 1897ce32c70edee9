package loader

import (
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// memFS is an in-memory file system for testing.
type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(data), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m[path]; ok {
		return memFileInfo(path), nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

type memFileInfo string

func (f memFileInfo) Name() string       { return string(f) }
func (f memFileInfo) Size() int64        { return 0 }
func (f memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f memFileInfo) ModTime() time.Time { return time.Time{} }
func (f memFileInfo) IsDir() bool        { return false }
func (f memFileInfo) Sys() any           { return nil }

func TestTOMLLoader_Load(t *testing.T) {
	files := memFS{
		"/etc/textnav.toml": `
[units]
supported = ["character", "word", "line"]
page_lines = 30

[logging]
level = "warn"
`,
	}
	got, err := NewTOMLLoader("/etc/textnav.toml").WithFS(files).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[string]any{
		"units": map[string]any{
			"supported":  []any{"character", "word", "line"},
			"page_lines": int64(30),
		},
		"logging": map[string]any{"level": "warn"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_Includes(t *testing.T) {
	files := memFS{
		"/cfg/main.toml": `
include = "base.toml"

[units]
page_lines = 50
`,
		"/cfg/base.toml": `
[units]
page_lines = 20
wrap_width = 72
`,
	}
	got, err := NewTOMLLoader("/cfg/main.toml").WithFS(files).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := map[string]any{
		"units": map[string]any{"page_lines": int64(50), "wrap_width": int64(72)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	files := memFS{
		"/a.toml": `include = "b.toml"`,
		"/b.toml": `include = "a.toml"`,
	}
	_, err := NewTOMLLoader("/a.toml").WithFS(files).Load()
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("expected ErrIncludeDepth, got %v", err)
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	files := memFS{}
	if _, err := NewTOMLLoader("/nope.toml").WithFS(files).Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("required file: expected ErrNotExist, got %v", err)
	}
	got, err := NewOptionalTOMLLoader("/nope.toml").WithFS(files).Load()
	if err != nil || got != nil {
		t.Errorf("optional file: got %v, %v; want nil, nil", got, err)
	}
}

func TestParse_Error(t *testing.T) {
	_, err := Parse("bad.toml", []byte("[units\npage_lines = 3\n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Path != "bad.toml" || pe.Line < 1 {
		t.Errorf("ParseError = %+v, want path bad.toml with a line", pe)
	}
}
