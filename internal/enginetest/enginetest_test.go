package enginetest

import (
	"fmt"
	"testing"

	"github.com/dshills/textnav/internal/engine/errkind"
)

func TestRunSkipsByPolicy(t *testing.T) {
	tc := Default().WithKnownBug("1234", "caret lands past the break")
	tc.MaxPriority = 1

	var ran []string
	record := func(name string) func(*testing.T) {
		return func(*testing.T) { ran = append(ran, name) }
	}
	tc.Run(t, []Case{
		{Name: "low", Priority: 1, Run: record("low")},
		{Name: "buggy", Bug: "1234", Run: record("buggy")},
		{Name: "lua only", Frameworks: []string{FrameworkLua}, Run: record("lua only")},
		{Name: "too low", Priority: 2, Run: record("too low")},
		{Name: "high", Run: record("high")},
	})

	if fmt.Sprint(ran) != "[high low]" {
		t.Errorf("ran %v, want [high low]", ran)
	}
	if len(Default().KnownBugs) != 0 {
		t.Error("WithKnownBug must not modify the receiver")
	}
}

func TestExpectKind(t *testing.T) {
	ExpectKind(t, errkind.E("op", errkind.OutOfRange, "bad"), errkind.OutOfRange)
}

func TestRepeat(t *testing.T) {
	if got := Repeat("ab", 5); got != "ababa" {
		t.Errorf("Repeat = %q", got)
	}
}
