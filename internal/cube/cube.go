// Package cube implements the in-memory nanocube engine: a set of shared
// binary refinement DAGs, one per dimension, that index multi-dimensional
// points so orthogonal range-summary queries run in time proportional to the
// query region's structural complexity rather than the dataset size.
//
// Storage is a dense reference-counted slab per dimension plus one slab of
// summary values. Handles are plain integers, which keeps the aggressively
// shared DAG free of pointer cycles and makes compaction a swap-and-remap.
//
// The engine is single-writer: Insert mutates shared structure and rewires
// parent lists. Any number of readers may run range queries concurrently on
// a cube that is not being mutated.
package cube

import (
	"github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/utils"
)

// MaxWidth bounds a dimension's bit width so node counts stay comfortably
// inside a signed 32-bit handle space.
const MaxWidth = 30

// Cube is a nanocube over summaries of type S.
type Cube[S Summary[S]] struct {
	dims      []*Dimension
	summaries RefVec[S]
	root      Handle
	sealed    bool

	// spineCache holds the fresh nodes built for the record currently being
	// inserted, keyed by (dimension, depth). A recursive fork that needs the
	// same fresh suffix reuses the cached chain instead of re-allocating.
	spineCache map[spineKey]Handle

	logger utils.Logger
}

type spineKey struct {
	dim, depth int
}

// Opt is a configuration option for a cube.
type Opt[S Summary[S]] func(*Cube[S])

// WithLogger attaches a logger used by maintenance operations.
func WithLogger[S Summary[S]](l utils.Logger) Opt[S] {
	return func(c *Cube[S]) {
		c.logger = l
	}
}

// New creates an empty cube with one dimension per entry of widths.
func New[S Summary[S]](widths []int, opts ...Opt[S]) (*Cube[S], error) {
	if len(widths) == 0 {
		return nil, errors.New(errors.CodeWidthRange, "at least one dimension is required")
	}
	c := &Cube[S]{
		root:       None,
		spineCache: make(map[spineKey]Handle),
		logger:     &utils.NullLogger{},
	}
	for i, w := range widths {
		if w < 1 || w > MaxWidth {
			return nil, errors.Newf(errors.CodeWidthRange,
				"dimension %d width %d outside [1, %d]", i, w, MaxWidth)
		}
		c.dims = append(c.dims, NewDimension(w))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NumDims returns the number of dimensions.
func (c *Cube[S]) NumDims() int {
	return len(c.dims)
}

// Widths returns the declared bit width of every dimension.
func (c *Cube[S]) Widths() []int {
	ws := make([]int, len(c.dims))
	for i, d := range c.dims {
		ws[i] = d.Width
	}
	return ws
}

// Root returns the handle of the dimension-0 root, or None before the first
// insertion.
func (c *Cube[S]) Root() Handle {
	return c.root
}

// Dim returns dimension d. The returned value must be treated as read-only.
func (c *Cube[S]) Dim(d int) *Dimension {
	return c.dims[d]
}

// SummaryAt returns the summary stored under the given summary-slab handle.
func (c *Cube[S]) SummaryAt(h Handle) S {
	return *c.summaries.At(h)
}

// NumSummaries returns the number of live summary slots.
func (c *Cube[S]) NumSummaries() int {
	return c.summaries.Live()
}

// ============================================================================
// Reference plumbing
// ============================================================================

// retain adds a reference to a node of dimension dim, or to a summary when
// dim equals the dimension count.
func (c *Cube[S]) retain(h Handle, dim int) {
	if h == None {
		return
	}
	if dim == len(c.dims) {
		c.summaries.Retain(h)
		return
	}
	c.dims[dim].Nodes.Retain(h)
}

// release removes a reference; a node whose count reaches zero releases its
// own edges post-order before its slot joins the free list.
func (c *Cube[S]) release(h Handle, dim int) {
	if h == None {
		return
	}
	if dim == len(c.dims) {
		c.summaries.Release(h)
		return
	}
	if c.dims[dim].Nodes.Release(h) == 0 {
		c.clean(h, dim)
	}
}

// clean drops the outgoing edges of a garbage node.
func (c *Cube[S]) clean(h Handle, dim int) {
	d := c.dims[dim]
	n := d.Nodes.At(h)
	left, right, next := n.Left, n.Right, n.Next
	n.Left, n.Right, n.Next = None, None, None
	d.removeParent(left, h)
	d.removeParent(right, h)
	c.release(left, dim)
	c.release(right, dim)
	c.release(next, dim+1)
}

// addNode allocates a node in dimension dim, retaining all three targets.
// The new node itself starts with reference count zero.
func (c *Cube[S]) addNode(dim int, left, right, next Handle) Handle {
	c.retain(left, dim)
	c.retain(right, dim)
	c.retain(next, dim+1)
	d := c.dims[dim]
	h := d.insert(Node{Left: left, Right: right, Next: next})
	d.addParent(left, h)
	d.addParent(right, h)
	return h
}

// setChild rewires one child edge of node h, keeping reference counts and
// parents lists exact.
func (c *Cube[S]) setChild(dim int, h Handle, bit int, v Handle) {
	d := c.dims[dim]
	n := d.Nodes.At(h)
	var old Handle
	if bit == 0 {
		old, n.Left = n.Left, v
	} else {
		old, n.Right = n.Right, v
	}
	if old == v {
		return
	}
	c.retain(v, dim)
	d.addParent(v, h)
	d.removeParent(old, h)
	c.release(old, dim)
}

// setNext rewires the next edge of node h.
func (c *Cube[S]) setNext(dim int, h Handle, v Handle) {
	n := c.dims[dim].Nodes.At(h)
	old := n.Next
	if old == v {
		return
	}
	n.Next = v
	c.retain(v, dim+1)
	c.release(old, dim+1)
}

// nextOf returns the next handle of a node in dimension dim.
func (c *Cube[S]) nextOf(dim int, h Handle) Handle {
	return c.dims[dim].Nodes.At(h).Next
}

// summaryIndex walks the next chain from a node down to the summary slab.
// A none handle resolves to a none summary.
func (c *Cube[S]) summaryIndex(h Handle, dim int) Handle {
	for h != None && dim < len(c.dims) {
		h = c.dims[dim].Nodes.At(h).Next
		dim++
	}
	return h
}

// ============================================================================
// Fresh spines
// ============================================================================

// spineAt returns the fresh node representing the record being inserted,
// rooted at depth of the given dimension: a chain of singletons following
// the remaining address bits through all remaining dimensions, terminated by
// a fresh summary. Chains are memoized in the per-insert spine cache, so two
// forks demanding the same suffix share one allocation.
func (c *Cube[S]) spineAt(dim, depth int, s S, addr []uint64) Handle {
	key := spineKey{dim, depth}
	if h, ok := c.spineCache[key]; ok {
		return h
	}
	var h Handle
	switch {
	case dim == len(c.dims):
		h = c.summaries.Insert(s)
	case depth == c.dims[dim].Width:
		h = c.addNode(dim, None, None, c.spineAt(dim+1, 0, s, addr))
	default:
		child := c.spineAt(dim, depth+1, s, addr)
		next := c.nextOf(dim, child)
		if pathBit(addr[dim], c.dims[dim].Width, depth) == 0 {
			h = c.addNode(dim, child, None, next)
		} else {
			h = c.addNode(dim, None, child, next)
		}
	}
	c.spineCache[key] = h
	return h
}

// resetSpine clears the per-insert spine cache.
func (c *Cube[S]) resetSpine() {
	clear(c.spineCache)
}

// releaseSpineGarbage reclaims cached spine nodes that ended up with no
// references: chains that were only merged into copies rather than attached.
// Only chain heads (cache entries with no cached predecessor) can be
// unreferenced; cascading their release frees any garbage suffix.
func (c *Cube[S]) releaseSpineGarbage() {
	for d := 0; d <= len(c.dims); d++ {
		top := 0
		if d < len(c.dims) {
			top = c.dims[d].Width
		}
		for b := 0; b <= top; b++ {
			h, ok := c.spineCache[spineKey{d, b}]
			if !ok {
				continue
			}
			if _, ok := c.spineCache[c.spinePredecessor(d, b)]; ok {
				continue
			}
			if d == len(c.dims) {
				if c.summaries.Refs(h) == 0 {
					c.summaries.Retain(h)
					c.summaries.Release(h)
				}
				continue
			}
			if c.dims[d].Nodes.Refs(h) == 0 {
				c.retain(h, d)
				c.release(h, d)
			}
		}
	}
}

// spinePredecessor returns the cache key of the chain node directly above
// (dim, depth) in a fully materialized spine.
func (c *Cube[S]) spinePredecessor(dim, depth int) spineKey {
	if depth > 0 {
		return spineKey{dim, depth - 1}
	}
	if dim == 0 {
		return spineKey{-1, -1}
	}
	return spineKey{dim - 1, c.dims[dim-1].Width}
}

// ============================================================================
// Validation
// ============================================================================

func (c *Cube[S]) checkAddress(addr []uint64) error {
	if len(addr) != len(c.dims) {
		return errors.Newf(errors.CodeInvalidInput,
			"address has %d coordinates, cube has %d dimensions", len(addr), len(c.dims))
	}
	for d, a := range addr {
		if a >= uint64(1)<<c.dims[d].Width {
			return errors.Newf(errors.CodeAddressRange,
				"address %d out of range for dimension %d (width %d)", a, d, c.dims[d].Width)
		}
	}
	return nil
}

func (c *Cube[S]) checkBounds(bounds [][2]uint64) error {
	if len(bounds) != len(c.dims) {
		return errors.Newf(errors.CodeMalformedBounds,
			"query has %d bounds, cube has %d dimensions", len(bounds), len(c.dims))
	}
	for d, b := range bounds {
		if b[0] > b[1] || b[1] > uint64(1)<<c.dims[d].Width {
			return errors.Newf(errors.CodeMalformedBounds,
				"bounds [%d, %d) invalid for dimension %d (width %d)", b[0], b[1], d, c.dims[d].Width)
		}
	}
	return nil
}
