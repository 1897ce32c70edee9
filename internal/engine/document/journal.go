package document

import "fmt"

// Change records one edit: [Start,End) of the Before revision was replaced
// by NewLen characters, producing the After revision. A Reset change
// replaces the whole document and carries no offsets.
type Change struct {
	Start  int
	End    int
	NewLen int
	Before RevisionID
	After  RevisionID
	Reset  bool
}

// Delta returns the change in document length.
func (c Change) Delta() int {
	return c.NewLen - (c.End - c.Start)
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	if c.Reset {
		return fmt.Sprintf("Reset(%d->%d)", c.Before, c.After)
	}
	switch {
	case c.Start == c.End:
		return fmt.Sprintf("Insert(%d, +%d)", c.Start, c.NewLen)
	case c.NewLen == 0:
		return fmt.Sprintf("Delete(%d-%d)", c.Start, c.End)
	default:
		return fmt.Sprintf("Replace(%d-%d, +%d)", c.Start, c.End, c.NewLen)
	}
}

// TransformOffset maps an offset from before c to after it.
//
//   - Offsets at or past the replaced range shift by the change's delta.
//   - Offsets inside the replaced range move to its start when sticky, or
//     to the end of the new text otherwise.
//   - An insertion exactly at the offset leaves a sticky offset in place
//     and pushes a non-sticky one past the inserted text.
func TransformOffset(offset int, c Change, sticky bool) int {
	if c.Start == c.End && offset == c.Start {
		if sticky {
			return offset
		}
		return offset + c.NewLen
	}
	if offset <= c.Start {
		return offset
	}
	if offset >= c.End {
		return offset + c.Delta()
	}
	if sticky {
		return c.Start
	}
	return c.Start + c.NewLen
}

// journal is a bounded log of the most recent changes.
type journal struct {
	changes []Change
	max     int
}

func newJournal(max int) *journal {
	if max <= 0 {
		max = DefaultJournalSize
	}
	return &journal{max: max}
}

func (j *journal) add(c Change) {
	j.changes = append(j.changes, c)
	if over := len(j.changes) - j.max; over > 0 {
		kept := make([]Change, j.max)
		copy(kept, j.changes[over:])
		j.changes = kept
	}
}

// since returns the changes after rev. It fails if rev has been evicted or
// was never a revision of this document.
func (j *journal) since(rev RevisionID) ([]Change, bool) {
	for i, c := range j.changes {
		if c.Before == rev {
			out := make([]Change, len(j.changes)-i)
			copy(out, j.changes[i:])
			return out, true
		}
	}
	return nil, false
}
