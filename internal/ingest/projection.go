// Package ingest loads geo datasets into a cube: it projects lat/lon pairs
// onto quadtree addresses and drives record parsing through a worker pool
// into the single-writer insert loop.
package ingest

import (
	"math"

	"github.com/nanocube/pkg/errors"
)

// MaxLatitude is the Web-Mercator latitude cutoff in degrees.
const MaxLatitude = 85.0511

// Projection converts lat/lon coordinates (degrees) to Morton-interleaved
// quadtree addresses at a fixed refinement level. One projected coordinate
// occupies a cube dimension of width 2*Level.
type Projection struct {
	Level int
}

// Width returns the bit width of the cube dimension fed by this projection.
func (p Projection) Width() int {
	return 2 * p.Level
}

// Project maps a lat/lon pair onto its quadtree address: Web-Mercator to
// the unit square, then a z-order interleave of the cell coordinates.
func (p Projection) Project(latDeg, lonDeg float64) (uint64, error) {
	if latDeg > MaxLatitude || latDeg < -MaxLatitude {
		return 0, errors.Newf(errors.CodeInvalidInput,
			"latitude %f outside [-%v, %v]", latDeg, MaxLatitude, MaxLatitude)
	}

	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180

	xd := (lon + math.Pi) / (2 * math.Pi)
	yd := (math.Log(math.Tan(math.Pi/4+lat/2)) + math.Pi) / (2 * math.Pi)

	cells := uint64(1) << p.Level
	x := uint64(xd * float64(cells))
	y := uint64(yd * float64(cells))
	// +180 degrees and the exact latitude cutoff land on the far edge
	if x >= cells {
		x = cells - 1
	}
	if y >= cells {
		y = cells - 1
	}

	return interleave(x, y, p.Level), nil
}

// interleave computes the Morton number: x on even bits, y on odd bits.
func interleave(x, y uint64, level int) uint64 {
	var z uint64
	for i := 0; i < level; i++ {
		z |= (x & (1 << i)) << i
		z |= (y & (1 << i)) << (i + 1)
	}
	return z
}
