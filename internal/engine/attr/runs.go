package attr

import (
	"fmt"
	"sort"
)

// Run is a maximal span sharing one value for a kind.
// Start is inclusive, End is exclusive: [Start, End).
type Run struct {
	Start int
	End   int
	Value any
}

// String returns a human-readable representation of the run.
func (r Run) String() string {
	return fmt.Sprintf("[%d:%d)=%v", r.Start, r.End, r.Value)
}

// Len returns the run length.
func (r Run) Len() int {
	return r.End - r.Start
}

// Runs is the ordered, gap-free list of runs of one kind over [0,n).
// Adjacent runs never share a value. The zero value covers an empty text.
type Runs []Run

// Uniform returns runs covering [0,n) with a single value.
func Uniform(n int, v any) Runs {
	if n <= 0 {
		return nil
	}
	return Runs{{Start: 0, End: n, Value: v}}
}

// Len returns the length of text covered by the runs.
func (rs Runs) Len() int {
	if len(rs) == 0 {
		return 0
	}
	return rs[len(rs)-1].End
}

// index returns the index of the run containing offset. Offsets at or past
// the end resolve to the last run. Returns -1 for empty runs.
func (rs Runs) index(offset int) int {
	if len(rs) == 0 {
		return -1
	}
	i := sort.Search(len(rs), func(i int) bool {
		return rs[i].End > offset
	})
	if i == len(rs) {
		i = len(rs) - 1
	}
	return i
}

// At returns the run containing offset.
func (rs Runs) At(offset int) (Run, bool) {
	i := rs.index(offset)
	if i < 0 {
		return Run{}, false
	}
	return rs[i], true
}

// Clip returns the runs intersecting [start,end), trimmed to that span.
func (rs Runs) Clip(start, end int) Runs {
	if start >= end {
		return nil
	}
	var out Runs
	for i := rs.index(start); i >= 0 && i < len(rs); i++ {
		r := rs[i]
		if r.Start >= end {
			break
		}
		if r.End <= start {
			continue
		}
		if r.Start < start {
			r.Start = start
		}
		if r.End > end {
			r.End = end
		}
		out = append(out, r)
	}
	return out
}

// Set returns runs with [start,end) overwritten by v.
// The receiver is not modified.
func (rs Runs) Set(start, end int, v any) Runs {
	if start >= end {
		return rs
	}
	out := make(Runs, 0, len(rs)+2)
	inserted := false
	for _, r := range rs {
		if r.End <= start {
			out = append(out, r)
			continue
		}
		if r.Start >= end {
			if !inserted {
				out = append(out, Run{Start: start, End: end, Value: v})
				inserted = true
			}
			out = append(out, r)
			continue
		}
		if r.Start < start {
			out = append(out, Run{Start: r.Start, End: start, Value: r.Value})
		}
		if !inserted {
			out = append(out, Run{Start: start, End: end, Value: v})
			inserted = true
		}
		if r.End > end {
			out = append(out, Run{Start: end, End: r.End, Value: r.Value})
		}
	}
	if !inserted {
		out = append(out, Run{Start: start, End: end, Value: v})
	}
	return out.normalize()
}

// Splice returns runs for the text after [start,end) is replaced by newLen
// characters. Inserted characters take the value of the run to their
// left, or of the first run when inserting at 0. base is used when the
// runs are empty.
func (rs Runs) Splice(start, end, newLen int, base any) Runs {
	delta := newLen - (end - start)
	inherit := base
	if len(rs) > 0 {
		if start > 0 {
			r, _ := rs.At(start - 1)
			inherit = r.Value
		} else {
			inherit = rs[0].Value
		}
	}

	out := make(Runs, 0, len(rs)+1)
	for _, r := range rs {
		switch {
		case r.End <= start:
			out = append(out, r)
		case r.Start >= end:
			out = append(out, Run{Start: r.Start + delta, End: r.End + delta, Value: r.Value})
		default:
			// Overlaps the replaced span: keep the parts outside it.
			if r.Start < start {
				out = append(out, Run{Start: r.Start, End: start, Value: r.Value})
			}
			if r.End > end {
				out = append(out, Run{Start: start + newLen, End: r.End + delta, Value: r.Value})
			}
		}
	}
	if newLen > 0 {
		ins := Run{Start: start, End: start + newLen, Value: inherit}
		i := sort.Search(len(out), func(i int) bool {
			return out[i].Start >= start
		})
		out = append(out, Run{})
		copy(out[i+1:], out[i:])
		out[i] = ins
	}
	return out.normalize()
}

// normalize drops empty runs and merges neighbours with equal values.
func (rs Runs) normalize() Runs {
	out := make(Runs, 0, len(rs))
	for _, r := range rs {
		if r.Start >= r.End {
			continue
		}
		if n := len(out); n > 0 && Equal(out[n-1].Value, r.Value) && out[n-1].End == r.Start {
			out[n-1].End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}

// Boundaries returns the start offsets of every run after the first.
func (rs Runs) Boundaries() []int {
	if len(rs) < 2 {
		return nil
	}
	b := make([]int, 0, len(rs)-1)
	for _, r := range rs[1:] {
		b = append(b, r.Start)
	}
	return b
}

// Validate reports an error unless the runs partition [0,n).
func (rs Runs) Validate(n int) error {
	pos := 0
	for _, r := range rs {
		if r.Start != pos {
			return fmt.Errorf("run %v leaves a gap at %d", r, pos)
		}
		if r.End <= r.Start {
			return fmt.Errorf("run %v is empty", r)
		}
		pos = r.End
	}
	if pos != n {
		return fmt.Errorf("runs cover [0,%d), want [0,%d)", pos, n)
	}
	return nil
}
