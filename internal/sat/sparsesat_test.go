package sat

import (
	"testing"

	"github.com/nanocube/internal/cube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesOf(pairs ...[2]int64) []Entry[cube.Count] {
	var es []Entry[cube.Count]
	for _, p := range pairs {
		es = append(es, Entry[cube.Count]{Key: uint64(p[0]), Sum: cube.Count(p[1])})
	}
	return es
}

func TestSparseSAT_Add(t *testing.T) {
	var s SparseSAT[cube.Count]
	s = s.Add(0, 3)
	s = s.Add(2, 3)
	s = s.Add(2, 3)

	// (0,3) (2,9)
	assert.True(t, s.Equal(FromEntries(entriesOf([2]int64{0, 3}, [2]int64{2, 9}))))

	assert.True(t, s.Add(1, 1).Equal(
		FromEntries(entriesOf([2]int64{0, 3}, [2]int64{1, 4}, [2]int64{2, 10}))))

	assert.True(t, s.Add(1, 1).Add(1, 1).Equal(
		FromEntries(entriesOf([2]int64{0, 3}, [2]int64{1, 5}, [2]int64{2, 11}))))

	assert.True(t, s.Add(0, 1).Equal(
		FromEntries(entriesOf([2]int64{0, 4}, [2]int64{2, 10}))))

	// Add is persistent: s itself is unchanged
	assert.True(t, s.Equal(FromEntries(entriesOf([2]int64{0, 3}, [2]int64{2, 9}))))
}

func TestSparseSAT_InsertBeforeFront(t *testing.T) {
	var s SparseSAT[cube.Count]
	s.AddMutate(5, 2)
	s.AddMutate(1, 1)

	assert.True(t, s.Equal(FromEntries(entriesOf([2]int64{1, 1}, [2]int64{5, 3}))))
}

func TestSparseSAT_Sum(t *testing.T) {
	var s SparseSAT[cube.Count]
	s.AddMutate(3, 1)
	s.AddMutate(5, 1)
	s.AddMutate(7, 1)

	assert.Equal(t, cube.Count(0), s.Sum(0, 0))
	assert.Equal(t, cube.Count(1), s.Sum(3, 4))
	assert.Equal(t, cube.Count(0), s.Sum(4, 5))
	assert.Equal(t, cube.Count(1), s.Sum(5, 6))
	assert.Equal(t, cube.Count(1), s.Sum(0, 4))
	assert.Equal(t, cube.Count(2), s.Sum(0, 6))
	assert.Equal(t, cube.Count(3), s.Sum(0, 8))
}

func TestSparseSAT_SumEmpty(t *testing.T) {
	var s SparseSAT[cube.Count]
	assert.Equal(t, cube.Count(0), s.Sum(0, 100))
}

func TestSparseSAT_Plus(t *testing.T) {
	var a, b SparseSAT[cube.Count]
	a.AddMutate(1, 1)
	a.AddMutate(5, 2)
	b.AddMutate(3, 4)
	b.AddMutate(5, 1)

	sum := a.Plus(b)
	// keys 1, 3, 5 with values 1, 4, 3: running sums 1, 5, 8
	assert.True(t, sum.Equal(FromEntries(entriesOf(
		[2]int64{1, 1}, [2]int64{3, 5}, [2]int64{5, 8}))))

	// commutative
	assert.True(t, sum.Equal(b.Plus(a)))

	// empty table is the identity
	var id SparseSAT[cube.Count]
	assert.True(t, a.Plus(id).Equal(a))
	assert.True(t, id.Plus(a).Equal(a))
}

func TestSparseSAT_PlusAssociative(t *testing.T) {
	var a, b, c SparseSAT[cube.Count]
	a.AddMutate(2, 1)
	b.AddMutate(2, 3)
	b.AddMutate(9, 1)
	c.AddMutate(0, 5)

	left := a.Plus(b).Plus(c)
	right := a.Plus(b.Plus(c))
	assert.True(t, left.Equal(right))
}

func TestSATCube_MatchesPlainCube(t *testing.T) {
	widths := []int{3, 4}

	sc, err := NewCube[cube.Count](widths)
	require.NoError(t, err)
	plain, err := cube.New[cube.Count](widths)
	require.NoError(t, err)

	points := [][]uint64{
		{0, 0}, {7, 15}, {1, 6}, {0, 3}, {0, 6}, {7, 15}, {3, 9},
	}
	for _, p := range points {
		require.NoError(t, sc.Insert(p, 1))
		require.NoError(t, plain.Insert(p, 1))
	}
	require.NoError(t, sc.Base().CheckInvariants())

	for lo0 := uint64(0); lo0 <= 8; lo0 += 2 {
		for hi0 := lo0; hi0 <= 8; hi0 += 3 {
			for lo1 := uint64(0); lo1 <= 16; lo1 += 5 {
				for hi1 := lo1; hi1 <= 16; hi1 += 4 {
					bounds := [][2]uint64{{lo0, hi0}, {lo1, hi1}}
					got, err := sc.Sum(bounds)
					require.NoError(t, err)

					var want cube.CombinePolicy[cube.Count]
					require.NoError(t, plain.RangeQuery(&want, bounds))
					assert.Equalf(t, want.Total, got, "bounds %v", bounds)
				}
			}
		}
	}
}

func TestSATCube_Validation(t *testing.T) {
	_, err := NewCube[cube.Count]([]int{4})
	assert.Error(t, err)

	sc, err := NewCube[cube.Count]([]int{3, 3})
	require.NoError(t, err)

	assert.Error(t, sc.Insert([]uint64{0}, 1))
	assert.Error(t, sc.Insert([]uint64{0, 8}, 1))
	_, err = sc.Sum([][2]uint64{{0, 8}})
	assert.Error(t, err)
	_, err = sc.Sum([][2]uint64{{0, 8}, {5, 2}})
	assert.Error(t, err)
}
