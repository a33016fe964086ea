package cube

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// insertFunc abstracts over the two insertion strategies so the equivalence
// harness exercises both.
type insertFunc func(c *Cube[Count], addr []uint64, s Count) error

func garbageInsert(c *Cube[Count], addr []uint64, s Count) error {
	return c.InsertGarbage(addr, s)
}

func nanocubeInsert(c *Cube[Count], addr []uint64, s Count) error {
	return c.Insert(addr, s)
}

// runEquivalence inserts random points into a cube and the naive oracle and
// compares every random query. Any disagreement is a failure.
func runEquivalence(t *testing.T, rng *rand.Rand, widths []int,
	insert insertFunc, nRuns, nPoints, nQueries int) {
	t.Helper()

	for run := 0; run < nRuns; run++ {
		c, err := New[Count](widths)
		require.NoError(t, err)
		oracle, err := NewNaive[Count](widths)
		require.NoError(t, err)

		var points [][]uint64
		for j := 0; j < nPoints; j++ {
			addr := make([]uint64, len(widths))
			for d, w := range widths {
				addr[d] = uint64(rng.Intn(1 << w))
			}
			points = append(points, addr)
			require.NoError(t, insert(c, addr, 1))
			require.NoError(t, oracle.Insert(addr, 1))
			if err := c.CheckInvariants(); err != nil {
				t.Fatalf("run %d: invariants broken after inserting %v: %v\npoints: %v",
					run, addr, err, points)
			}
		}

		for j := 0; j < nQueries; j++ {
			bounds := make([][2]uint64, len(widths))
			for d, w := range widths {
				a := uint64(rng.Intn(1<<w + 1))
				b := uint64(rng.Intn(1<<w + 1))
				if a > b {
					a, b = b, a
				}
				bounds[d] = [2]uint64{a, b}
			}
			var pc, pn CombinePolicy[Count]
			require.NoError(t, c.RangeQuery(&pc, bounds))
			require.NoError(t, oracle.RangeQuery(&pn, bounds))
			if pc.Total != pn.Total {
				t.Fatalf("run %d: cube %d vs oracle %d on bounds %v\npoints: %v",
					run, pc.Total, pn.Total, bounds, points)
			}
		}
	}
}

func TestEquivalence_GarbageInsert_1D(t *testing.T) {
	runEquivalence(t, rand.New(rand.NewSource(1)), []int{4}, garbageInsert, 60, 8, 20)
}

func TestEquivalence_GarbageInsert_2D(t *testing.T) {
	runEquivalence(t, rand.New(rand.NewSource(2)), []int{4, 4}, garbageInsert, 60, 6, 20)
}

func TestEquivalence_NanocubeInsert_1D(t *testing.T) {
	runEquivalence(t, rand.New(rand.NewSource(3)), []int{4}, nanocubeInsert, 60, 8, 20)
}

func TestEquivalence_NanocubeInsert_2D(t *testing.T) {
	runEquivalence(t, rand.New(rand.NewSource(4)), []int{4, 4}, nanocubeInsert, 60, 6, 20)
}

func TestEquivalence_NanocubeInsert_3D(t *testing.T) {
	runEquivalence(t, rand.New(rand.NewSource(5)), []int{3, 2, 3}, nanocubeInsert, 40, 6, 20)
}

func TestEquivalence_MixedWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	// widths drawn from a small skewed distribution, as real schemas are
	for trial := 0; trial < 12; trial++ {
		nDims := 1 + rng.Intn(3)
		widths := make([]int, nDims)
		for d := range widths {
			widths[d] = 1 + rng.Intn(6)
		}
		runEquivalence(t, rng, widths, nanocubeInsert, 4, 8, 15)
	}
}

func TestEquivalence_StrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	widths := []int{4, 3}

	for run := 0; run < 30; run++ {
		gc, err := New[Count](widths)
		require.NoError(t, err)
		nc, err := New[Count](widths)
		require.NoError(t, err)

		for j := 0; j < 8; j++ {
			addr := []uint64{uint64(rng.Intn(16)), uint64(rng.Intn(8))}
			require.NoError(t, gc.InsertGarbage(addr, 1))
			require.NoError(t, nc.Insert(addr, 1))
		}
		require.NoError(t, gc.CheckInvariants())
		require.NoError(t, nc.CheckInvariants())

		for j := 0; j < 25; j++ {
			bounds := [][2]uint64{
				sortedPair(rng, 16), sortedPair(rng, 8),
			}
			var pg, pn CombinePolicy[Count]
			require.NoError(t, gc.RangeQuery(&pg, bounds))
			require.NoError(t, nc.RangeQuery(&pn, bounds))
			require.Equal(t, pg.Total, pn.Total, "bounds %v", bounds)
		}
	}
}

func sortedPair(rng *rand.Rand, max int) [2]uint64 {
	a := uint64(rng.Intn(max + 1))
	b := uint64(rng.Intn(max + 1))
	if a > b {
		a, b = b, a
	}
	return [2]uint64{a, b}
}

func TestNanocubeInsert_LiveSetStaysBounded(t *testing.T) {
	// repeated inserts over a handful of distinct addresses must not grow
	// the live node set: sharing keeps it a function of the address set,
	// not of the insert count
	widths := []int{6, 6}
	c, err := New[Count](widths)
	require.NoError(t, err)

	var plateau int
	for i := 0; i < 50; i++ {
		require.NoError(t, c.Insert([]uint64{uint64(i % 4), uint64(i % 4)}, 1))
		if i == 3 {
			plateau = liveNodes(c)
		}
	}
	require.NoError(t, c.CheckInvariants())
	require.Equal(t, plateau, liveNodes(c))
	require.Equal(t, Count(50), c.Total())
}

func liveNodes(c *Cube[Count]) int {
	live := 0
	for d := 0; d < c.NumDims(); d++ {
		live += c.Dim(d).Nodes.Live()
	}
	return live
}
