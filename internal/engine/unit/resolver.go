package unit

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/textnav/internal/engine/document"
	"github.com/dshills/textnav/internal/logging"
)

// maxCachedDocuments bounds the boundary cache. Only the latest revision
// of each document is kept.
const maxCachedDocuments = 64

// Option configures a Resolver.
type Option func(*Resolver)

// WithUnits restricts the units the host supports. Document is always
// supported; any other unit not listed falls back to the next larger
// supported one.
func WithUnits(units ...Unit) Option {
	return func(r *Resolver) {
		r.supported = [Count]bool{}
		for _, u := range units {
			if u.Valid() {
				r.supported[u] = true
			}
		}
		r.supported[Document] = true
	}
}

// WithPageLines paginates every n lines. With n <= 0 pages coincide with
// paragraphs.
func WithPageLines(n int) Option {
	return func(r *Resolver) {
		r.pageLines = n
	}
}

// WithWrapWidth wraps lines wider than w display cells. Zero disables
// soft wrapping.
func WithWrapWidth(w int) Option {
	return func(r *Resolver) {
		r.wrapWidth = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.log = l.WithComponent("unit")
	}
}

type cacheKey struct {
	doc uuid.UUID
	rev document.RevisionID
}

// Resolver computes unit boundaries. It is safe for concurrent use.
type Resolver struct {
	supported [Count]bool
	pageLines int
	wrapWidth int
	log       *logging.Logger

	mu    sync.Mutex
	cache map[uuid.UUID]*entry
}

type entry struct {
	rev    document.RevisionID
	bounds [Count][]int
}

// NewResolver creates a resolver supporting every unit unless restricted.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{cache: make(map[uuid.UUID]*entry)}
	for i := range r.supported {
		r.supported[i] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supports reports whether u is handled without fallback.
func (r *Resolver) Supports(u Unit) bool {
	return u.Valid() && r.supported[u]
}

// Resolve returns the unit actually used for u.
func (r *Resolver) Resolve(u Unit) Unit {
	if !u.Valid() {
		return Document
	}
	for !r.supported[u] {
		u++
	}
	return u
}

// Boundaries returns the sorted boundary offsets of u over snap, including
// 0 and N. The result is shared and must not be modified.
func (r *Resolver) Boundaries(snap *document.Snapshot, u Unit) []int {
	u = r.Resolve(u)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.cache[snap.ID()]
	if !ok || e.rev != snap.Revision() {
		if !ok && len(r.cache) >= maxCachedDocuments {
			r.cache = make(map[uuid.UUID]*entry)
		}
		e = &entry{rev: snap.Revision()}
		r.cache[snap.ID()] = e
	}
	if b := e.bounds[u]; b != nil {
		return b
	}

	b := normalize(r.compute(snap, u, e))
	e.bounds[u] = b
	r.log.Debug("computed %d %s boundaries at revision %d", len(b), u, snap.Revision())
	return b
}

// compute builds the raw boundary list. Caller holds r.mu.
func (r *Resolver) compute(snap *document.Snapshot, u Unit, e *entry) []int {
	switch u {
	case Character:
		return characterBoundaries(snap)
	case Format:
		return formatBoundaries(snap)
	case Word:
		return wordBoundaries(snap)
	case Line:
		return lineBoundaries(snap, r.wrapWidth)
	case Paragraph:
		return paragraphBoundaries(snap)
	case Page:
		if r.pageLines <= 0 {
			return paragraphBoundaries(snap)
		}
		lines := e.bounds[Line]
		if lines == nil {
			lines = normalize(lineBoundaries(snap, r.wrapWidth))
			e.bounds[Line] = lines
		}
		return pageBoundaries(lines, r.pageLines)
	default:
		return []int{0, snap.Len()}
	}
}

// Boundary returns the nearest boundary strictly after (Forward) or
// strictly before (Backward) offset, clamped to [0,N].
func (r *Resolver) Boundary(snap *document.Snapshot, offset int, u Unit, dir Direction) int {
	b := r.Boundaries(snap, u)
	if dir == Backward {
		i := sort.SearchInts(b, offset) - 1
		if i < 0 {
			return 0
		}
		return b[i]
	}
	i := sort.Search(len(b), func(i int) bool { return b[i] > offset })
	if i == len(b) {
		return snap.Len()
	}
	return b[i]
}

// Enclosing returns the unit span containing offset. At offset N of a
// non-empty document the last unit is returned; an empty document yields
// (0,0).
func (r *Resolver) Enclosing(snap *document.Snapshot, offset int, u Unit) (int, int) {
	n := snap.Len()
	if n == 0 {
		return 0, 0
	}
	offset = clamp(offset, 0, n-1)
	b := r.Boundaries(snap, u)
	i := sort.Search(len(b), func(i int) bool { return b[i] > offset }) - 1
	return b[i], b[i+1]
}

// Step walks count boundaries from offset. It returns the new offset and
// the number of steps taken, which has the sign of count and never a
// larger magnitude.
func (r *Resolver) Step(snap *document.Snapshot, offset int, u Unit, count int) (int, int) {
	if count == 0 {
		return offset, 0
	}
	b := r.Boundaries(snap, u)
	if count > 0 {
		i := sort.Search(len(b), func(i int) bool { return b[i] > offset })
		moved := min(count, len(b)-i)
		if moved == 0 {
			return offset, 0
		}
		return b[i+moved-1], moved
	}
	j := sort.SearchInts(b, offset) - 1
	moved := min(-count, j+1)
	if moved == 0 {
		return offset, 0
	}
	return b[j-moved+1], -moved
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
