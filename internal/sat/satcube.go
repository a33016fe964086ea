package sat

import (
	"github.com/nanocube/internal/cube"
	"github.com/nanocube/pkg/errors"
)

// Cube is a nanocube whose last dimension is a sparse summed-area table:
// the leading dimensions refine as usual, while the final coordinate of each
// record lands in the SAT summaries. Interval queries on the last dimension
// resolve through prefix sums instead of a refinement walk.
//
// Insertion uses the garbage-producing strategy: SAT summaries are not O(1)
// to copy, so the simple merge-based insert keeps the summary churn easy to
// reason about.
type Cube[T Value[T]] struct {
	base      *cube.Cube[SparseSAT[T]]
	lastWidth int
}

// NewCube creates a SAT cube. The widths describe all dimensions including
// the last, SAT-backed one, so at least two entries are required.
func NewCube[T Value[T]](widths []int, opts ...cube.Opt[SparseSAT[T]]) (*Cube[T], error) {
	if len(widths) < 2 {
		return nil, errors.New(errors.CodeWidthRange,
			"a SAT cube needs at least two dimensions: one to refine, one to sum")
	}
	last := widths[len(widths)-1]
	if last < 1 || last > cube.MaxWidth {
		return nil, errors.Newf(errors.CodeWidthRange,
			"last dimension width %d outside [1, %d]", last, cube.MaxWidth)
	}
	base, err := cube.New[SparseSAT[T]](widths[:len(widths)-1], opts...)
	if err != nil {
		return nil, err
	}
	return &Cube[T]{base: base, lastWidth: last}, nil
}

// NumDims returns the number of dimensions, the SAT-backed one included.
func (c *Cube[T]) NumDims() int {
	return c.base.NumDims() + 1
}

// Base exposes the underlying cube for auditing and dumps.
func (c *Cube[T]) Base() *cube.Cube[SparseSAT[T]] {
	return c.base
}

// Insert adds a record; the final coordinate of addr keys into the SAT.
func (c *Cube[T]) Insert(addr []uint64, val T) error {
	if len(addr) != c.base.NumDims()+1 {
		return errors.Newf(errors.CodeInvalidInput,
			"address has %d coordinates, cube has %d dimensions", len(addr), c.base.NumDims()+1)
	}
	last := addr[len(addr)-1]
	if last >= uint64(1)<<c.lastWidth {
		return errors.Newf(errors.CodeAddressRange,
			"address %d out of range for dimension %d (width %d)",
			last, len(addr)-1, c.lastWidth)
	}

	var singleton SparseSAT[T]
	singleton.AddMutate(last, val)
	return c.base.InsertGarbage(addr[:len(addr)-1], singleton)
}

// satPolicy narrows each delivered SAT to the last dimension's interval
// before handing the value on.
type satPolicy[T Value[T]] struct {
	lo, hi uint64
	next   func(T)
}

func (p *satPolicy[T]) Add(s SparseSAT[T]) {
	p.next(s.Sum(p.lo, p.hi))
}

// RangeQuery sums every record inside the box; bounds cover all dimensions,
// the last one included.
func (c *Cube[T]) RangeQuery(add func(T), bounds [][2]uint64) error {
	if len(bounds) != c.base.NumDims()+1 {
		return errors.Newf(errors.CodeMalformedBounds,
			"query has %d bounds, cube has %d dimensions", len(bounds), c.base.NumDims()+1)
	}
	last := bounds[len(bounds)-1]
	if last[0] > last[1] || last[1] > uint64(1)<<c.lastWidth {
		return errors.Newf(errors.CodeMalformedBounds,
			"bounds [%d, %d) invalid for dimension %d (width %d)",
			last[0], last[1], len(bounds)-1, c.lastWidth)
	}
	adaptor := &satPolicy[T]{lo: last[0], hi: last[1], next: add}
	return c.base.RangeQuery(adaptor, bounds[:len(bounds)-1])
}

// Sum is a convenience wrapper accumulating the query total.
func (c *Cube[T]) Sum(bounds [][2]uint64) (T, error) {
	var total T
	err := c.RangeQuery(func(v T) {
		total = total.Plus(v)
	}, bounds)
	return total, err
}
