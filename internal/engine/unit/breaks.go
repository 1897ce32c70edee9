package unit

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/textnav/internal/engine/document"
)

// IsLineBreak reports whether r ends a line.
func IsLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return false
}

func isParagraphBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2029'
}

// hardBreaks returns the offsets just after each break accepted by isBreak.
// \r\n counts as one break.
func hardBreaks(text []rune, isBreak func(rune) bool) []int {
	var out []int
	for i := 0; i < len(text); i++ {
		r := text[i]
		if !isBreak(r) {
			continue
		}
		if r == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		out = append(out, i+1)
	}
	return out
}

func characterBoundaries(snap *document.Snapshot) []int {
	out := []int{0}
	g := uniseg.NewGraphemes(snap.Text())
	pos := 0
	for g.Next() {
		pos += len(g.Runes())
		out = append(out, pos)
	}
	return out
}

func formatBoundaries(snap *document.Snapshot) []int {
	out := []int{0, snap.Len()}
	for _, k := range snap.Kinds() {
		runs, _ := snap.Runs(k)
		out = append(out, runs.Boundaries()...)
	}
	return out
}

// wordBoundaries splits on Unicode word boundaries. A run of horizontal
// whitespace belongs to the word before it; line breaks stand alone.
func wordBoundaries(snap *document.Snapshot) []int {
	out := []int{0}
	rest := snap.Text()
	state := -1
	pos := 0
	prevBreak := true
	var word string
	for len(rest) > 0 {
		word, rest, state = uniseg.FirstWordInString(rest, state)
		space := isHorizontalSpace(word)
		if pos > 0 && !(space && !prevBreak) {
			out = append(out, pos)
		}
		r, _ := utf8.DecodeRuneInString(word)
		prevBreak = IsLineBreak(r)
		pos += utf8.RuneCountInString(word)
	}
	return append(out, pos)
}

func isHorizontalSpace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) || IsLineBreak(r) {
			return false
		}
	}
	return true
}

// lineBoundaries returns hard line starts and, when wrap > 0, the soft
// wrap points where the display width of a line would exceed wrap.
func lineBoundaries(snap *document.Snapshot, wrap int) []int {
	text := snap.Runes()
	hard := hardBreaks(text, IsLineBreak)
	out := append([]int{0, len(text)}, hard...)
	if wrap <= 0 {
		return out
	}

	start := 0
	for _, end := range append(hard, len(text)) {
		if end > start {
			out = append(out, wrapLine(string(text[start:end]), start, wrap)...)
		}
		start = end
	}
	return out
}

// wrapLine returns soft break offsets within one hard line beginning at base.
func wrapLine(line string, base, wrap int) []int {
	var out []int
	rest := line
	state := -1
	pos, width := base, 0
	var seg string
	for len(rest) > 0 {
		seg, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
		visible := runewidth.StringWidth(strings.TrimRightFunc(seg, unicode.IsSpace))
		if width > 0 && width+visible > wrap {
			out = append(out, pos)
			width = 0
		}
		width += runewidth.StringWidth(strings.TrimRightFunc(seg, IsLineBreak))
		pos += utf8.RuneCountInString(seg)
	}
	return out
}

func paragraphBoundaries(snap *document.Snapshot) []int {
	return append([]int{0, snap.Len()}, hardBreaks(snap.Runes(), isParagraphBreak)...)
}

// pageBoundaries groups every pageLines lines into a page.
func pageBoundaries(lines []int, pageLines int) []int {
	out := make([]int, 0, len(lines)/pageLines+2)
	for i := 0; i < len(lines); i += pageLines {
		out = append(out, lines[i])
	}
	return append(out, lines[len(lines)-1])
}

// normalize sorts and deduplicates boundaries.
func normalize(b []int) []int {
	sort.Ints(b)
	out := b[:0]
	for i, v := range b {
		if i == 0 || v != b[i-1] {
			out = append(out, v)
		}
	}
	return out
}
