package traversal

import (
	"testing"

	"github.com/nanocube/internal/cube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCube(t *testing.T, widths []int, points ...[]uint64) *cube.Cube[cube.Count] {
	t.Helper()
	c, err := cube.New[cube.Count](widths)
	require.NoError(t, err)
	for _, p := range points {
		require.NoError(t, c.Insert(p, 1))
	}
	return c
}

func TestRange_CoverOfTwoPoints(t *testing.T) {
	// mirrors the classic width-5 example: points 10 and 12
	c := buildCube(t, []int{5}, []uint64{10}, []uint64{12})
	d := c.Dim(0)

	// the full interval is covered by the root alone
	nodes := Range(d, 0, c.Root(), 0, 32, 1, false)
	require.Len(t, nodes, 1)
	assert.Equal(t, c.Root(), nodes[0].Index)
	assert.Equal(t, 0, nodes[0].Depth)

	// an empty half yields nothing
	nodes = Range(d, 0, c.Root(), 16, 32, 2, false)
	assert.Empty(t, nodes)

	// [9,13) cannot be covered at resolution 1, unless partial overlaps count
	nodes = Range(d, 0, c.Root(), 9, 13, 1, false)
	assert.Empty(t, nodes)
	nodes = Range(d, 0, c.Root(), 9, 13, 1, true)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, nodes[0].Depth)

	// at full depth the cover picks exactly the canonical nodes
	nodes = Range(d, 0, c.Root(), 9, 13, 5, false)
	total := cube.Count(0)
	for _, qn := range nodes {
		total += summaryOf(c, qn.Index)
	}
	assert.Equal(t, cube.Count(2), total)
}

func summaryOf(c *cube.Cube[cube.Count], h cube.Handle) cube.Count {
	n := c.Dim(0).Nodes.At(h)
	return c.SummaryAt(n.Next)
}

func TestRange_EmptyRoot(t *testing.T) {
	c := buildCube(t, []int{4})
	assert.Empty(t, Range(c.Dim(0), 0, c.Root(), 0, 16, 4, false))
}

func TestFind(t *testing.T) {
	c := buildCube(t, []int{4}, []uint64{9})
	d := c.Dim(0)

	// the full path to the point exists
	nodes := Find(d, 0, c.Root(), 9, 4)
	require.Len(t, nodes, 1)
	assert.Equal(t, uint64(9), nodes[0].Address)
	assert.Equal(t, 4, nodes[0].Depth)
	assert.Equal(t, cube.Count(1), summaryOf(c, nodes[0].Index))

	// prefix 10 (binary) at depth 2 also exists: 9 = 1001
	nodes = Find(d, 0, c.Root(), 2, 2)
	require.Len(t, nodes, 1)

	// a path the data never took is absent
	assert.Empty(t, Find(d, 0, c.Root(), 0, 4))

	// depth zero returns the root itself
	nodes = Find(d, 0, c.Root(), 0, 0)
	require.Len(t, nodes, 1)
	assert.Equal(t, c.Root(), nodes[0].Index)
}

func TestSplit(t *testing.T) {
	c := buildCube(t, []int{3}, []uint64{0}, []uint64{3}, []uint64{7})
	d := c.Dim(0)

	// split the root into its depth-2 frontier: prefixes 00, 01 and 11
	nodes := Split(d, 0, c.Root(), 0, 0, 2)
	addrs := map[uint64]bool{}
	for _, qn := range nodes {
		require.Equal(t, 2, qn.Depth)
		addrs[qn.Address] = true
	}
	assert.Equal(t, map[uint64]bool{0: true, 1: true, 3: true}, addrs)

	// splitting past the floor clamps to the dimension width
	nodes = Split(d, 0, c.Root(), 0, 0, 10)
	for _, qn := range nodes {
		assert.Equal(t, 3, qn.Depth)
	}
	assert.Len(t, nodes, 3)

	// a missing prefix splits to nothing
	assert.Empty(t, Split(d, 0, c.Root(), 2, 2, 1))
}
