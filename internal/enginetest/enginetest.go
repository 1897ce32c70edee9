// Package enginetest holds test helpers shared by the engine packages.
//
// Test policy that depends on where the tests run, such as the scripting
// front end under test or bugs known to affect it, lives in a TestContext
// value passed to each table instead of package globals.
package enginetest

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/dshills/textnav/internal/engine/errkind"
)

// Frameworks a scenario can run under.
const (
	FrameworkGo  = "go"
	FrameworkLua = "lua"
)

// TestContext carries per-run test policy.
type TestContext struct {
	// Framework names the front end driving the engine.
	Framework string
	// MaxPriority skips cases with a larger priority. Zero runs all.
	MaxPriority int
	// KnownBugs maps bug identifiers to a reason. Cases tagged with one of
	// them are skipped.
	KnownBugs map[string]string
}

// Default returns the context used by plain go test runs.
func Default() TestContext {
	return TestContext{Framework: FrameworkGo}
}

// WithKnownBug returns a copy of tc that skips cases tagged with bug.
func (tc TestContext) WithKnownBug(bug, reason string) TestContext {
	bugs := make(map[string]string, len(tc.KnownBugs)+1)
	for k, v := range tc.KnownBugs {
		bugs[k] = v
	}
	bugs[bug] = reason
	tc.KnownBugs = bugs
	return tc
}

// Case is one row of a scenario table.
type Case struct {
	Name string
	// Priority orders cases by importance; 0 is highest.
	Priority int
	// Bug tags a case affected by a known bug.
	Bug string
	// Frameworks restricts the case to the named frameworks. Empty means
	// all.
	Frameworks []string
	Run        func(t *testing.T)
}

// skipReason returns why c should not run under tc, or "".
func (tc TestContext) skipReason(c Case) string {
	if tc.MaxPriority > 0 && c.Priority > tc.MaxPriority {
		return "priority above limit"
	}
	if reason, ok := tc.KnownBugs[c.Bug]; ok && c.Bug != "" {
		return "known bug " + c.Bug + ": " + reason
	}
	if len(c.Frameworks) > 0 {
		for _, f := range c.Frameworks {
			if f == tc.Framework {
				return ""
			}
		}
		return "not run under " + tc.Framework
	}
	return ""
}

// Run runs every case as a subtest, in priority order.
func (tc TestContext) Run(t *testing.T, cases []Case) {
	t.Helper()
	ordered := make([]Case, len(cases))
	copy(ordered, cases)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	for _, c := range ordered {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			if reason := tc.skipReason(c); reason != "" {
				t.Skip(reason)
			}
			c.Run(t)
		})
	}
}

// ExpectKind fails t unless err has the given kind.
func ExpectKind(t testing.TB, err error, kind errkind.Kind) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

// ExpectNoError fails t if err is not nil.
func ExpectNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Repeat returns s repeated to n characters, for building long documents.
func Repeat(s string, n int) string {
	if s == "" || n <= 0 {
		return ""
	}
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(s)
	}
	return string([]rune(b.String())[:n])
}
