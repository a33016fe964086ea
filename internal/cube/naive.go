package cube

import "github.com/nanocube/pkg/errors"

// NaiveCube is the linear-scan reference implementation: it stores every
// record verbatim and answers range queries by checking each one. Far too
// slow to serve queries, exactly right as an oracle for property tests.
type NaiveCube[S Summary[S]] struct {
	widths  []int
	records []naiveRecord[S]
}

type naiveRecord[S Summary[S]] struct {
	addr    []uint64
	summary S
}

// NewNaive creates an empty naive cube with the given dimension widths.
func NewNaive[S Summary[S]](widths []int) (*NaiveCube[S], error) {
	if len(widths) == 0 {
		return nil, errors.New(errors.CodeWidthRange, "at least one dimension is required")
	}
	for i, w := range widths {
		if w < 1 || w > MaxWidth {
			return nil, errors.Newf(errors.CodeWidthRange,
				"dimension %d width %d outside [1, %d]", i, w, MaxWidth)
		}
	}
	return &NaiveCube[S]{widths: append([]int(nil), widths...)}, nil
}

// Insert stores a record.
func (c *NaiveCube[S]) Insert(addr []uint64, s S) error {
	if len(addr) != len(c.widths) {
		return errors.Newf(errors.CodeInvalidInput,
			"address has %d coordinates, cube has %d dimensions", len(addr), len(c.widths))
	}
	for d, a := range addr {
		if a >= uint64(1)<<c.widths[d] {
			return errors.Newf(errors.CodeAddressRange,
				"address %d out of range for dimension %d (width %d)", a, d, c.widths[d])
		}
	}
	c.records = append(c.records, naiveRecord[S]{
		addr:    append([]uint64(nil), addr...),
		summary: s,
	})
	return nil
}

// RangeQuery delivers the summary of every record inside the box.
func (c *NaiveCube[S]) RangeQuery(policy SummaryPolicy[S], bounds [][2]uint64) error {
	if len(bounds) != len(c.widths) {
		return errors.Newf(errors.CodeMalformedBounds,
			"query has %d bounds, cube has %d dimensions", len(bounds), len(c.widths))
	}
	for d, b := range bounds {
		if b[0] > b[1] || b[1] > uint64(1)<<c.widths[d] {
			return errors.Newf(errors.CodeMalformedBounds,
				"bounds [%d, %d) invalid for dimension %d (width %d)", b[0], b[1], d, c.widths[d])
		}
	}
	for _, rec := range c.records {
		inside := true
		for d, a := range rec.addr {
			if a < bounds[d][0] || a >= bounds[d][1] {
				inside = false
				break
			}
		}
		if inside {
			policy.Add(rec.summary)
		}
	}
	return nil
}

// Len returns the number of stored records.
func (c *NaiveCube[S]) Len() int {
	return len(c.records)
}
