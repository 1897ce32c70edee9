package textrange

import (
	"golang.org/x/text/cases"

	"github.com/dshills/textnav/internal/engine/attr"
	"github.com/dshills/textnav/internal/engine/errkind"
)

// FindText returns the first sub-range matching text, or the last one when
// backward is set. ignoreCase compares under Unicode case folding. A nil
// range with a nil error means no match.
func (r *TextRange) FindText(text string, backward, ignoreCase bool) (*TextRange, error) {
	const op = "TextRange.FindText"
	snap, err := r.snapshot(op)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errkind.E(op, errkind.InvalidArgument, "search text is empty")
	}

	hay := snap.Runes()[r.start:r.end]
	needle := []rune(text)
	var origin []int
	if ignoreCase {
		hay, origin = fold(hay)
		needle, _ = fold(needle)
	}

	start, end, ok := search(hay, needle, origin, backward)
	if !ok {
		return nil, nil
	}
	return &TextRange{p: r.p, rev: r.rev, start: r.start + start, end: r.start + end}, nil
}

// fold case-folds s rune by rune. origin[i] is the index in s of the rune
// that produced the i'th folded rune.
func fold(s []rune) ([]rune, []int) {
	c := cases.Fold()
	out := make([]rune, 0, len(s))
	origin := make([]int, 0, len(s))
	for i, ch := range s {
		for _, f := range c.String(string(ch)) {
			out = append(out, f)
			origin = append(origin, i)
		}
	}
	return out, origin
}

// search finds needle in hay and returns the match in original offsets.
// With origin set, matches must begin and end on original rune edges.
func search(hay, needle []rune, origin []int, backward bool) (int, int, bool) {
	n := len(hay) - len(needle)
	for k := 0; k <= n; k++ {
		i := k
		if backward {
			i = n - k
		}
		if !equalRunes(hay[i:i+len(needle)], needle) {
			continue
		}
		if origin == nil {
			return i, i + len(needle), true
		}
		j := i + len(needle)
		if i > 0 && origin[i-1] == origin[i] {
			continue
		}
		if j < len(origin) && origin[j] == origin[j-1] {
			continue
		}
		return origin[i], origin[j-1] + 1, true
	}
	return 0, 0, false
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FindAttribute returns the first maximal sub-range whose kind equals
// value, or the last one when backward is set. A nil range with a nil
// error means no match.
func (r *TextRange) FindAttribute(kind *attr.Kind, value any, backward bool) (*TextRange, error) {
	const op = "TextRange.FindAttribute"
	snap, err := r.snapshot(op)
	if err != nil {
		return nil, err
	}
	if kind == nil {
		return nil, errkind.E(op, errkind.NullArgument, "attribute kind is nil")
	}
	if value == nil {
		return nil, errkind.E(op, errkind.NullArgument, "attribute value is nil")
	}
	if err := kind.Check(value); err != nil {
		return nil, errkind.Wrap(op, err, errkind.InvalidArgument)
	}

	runs, ok := snap.Runs(kind)
	if !ok {
		return nil, nil
	}
	clip := runs.Clip(r.start, r.end)
	for k := range clip {
		i := k
		if backward {
			i = len(clip) - 1 - k
		}
		if attr.Equal(clip[i].Value, value) {
			return &TextRange{p: r.p, rev: r.rev, start: clip[i].Start, end: clip[i].End}, nil
		}
	}
	return nil, nil
}
