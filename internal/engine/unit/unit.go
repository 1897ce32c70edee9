// Package unit resolves text-unit boundaries over document snapshots.
//
// Every unit partitions a document of N characters with a sorted boundary
// list that always contains 0 and N. Navigation (Boundary, Enclosing,
// Step) is a binary search over that list, so no query on a valid offset
// can fail. Lists are computed on demand and cached per document revision.
package unit

import (
	"fmt"
	"strings"
)

// Unit is a granularity of navigation, ordered from smallest to largest.
type Unit uint8

const (
	Character Unit = iota
	Format
	Word
	Line
	Paragraph
	Page
	Document
)

// Count is the number of units.
const Count = int(Document) + 1

var unitNames = [Count]string{
	"character", "format", "word", "line", "paragraph", "page", "document",
}

// String returns the lowercase unit name.
func (u Unit) String() string {
	if int(u) < Count {
		return unitNames[u]
	}
	return fmt.Sprintf("unit(%d)", u)
}

// Valid reports whether u is one of the defined units.
func (u Unit) Valid() bool {
	return int(u) < Count
}

// Parse returns the unit with the given name, ignoring case.
func Parse(name string) (Unit, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range unitNames {
		if s == n {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown text unit %q", name)
}

// All returns every unit in increasing size.
func All() []Unit {
	out := make([]Unit, Count)
	for i := range out {
		out[i] = Unit(i)
	}
	return out
}

// Direction selects which way Boundary searches.
type Direction int8

const (
	Forward  Direction = 1
	Backward Direction = -1
)
