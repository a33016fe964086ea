package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nanocube/pkg/errors"
)

// the auditor must catch deliberate corruption, not just pass healthy cubes

func corruptibleCube(t *testing.T) *Cube[Count] {
	t.Helper()
	c, err := New[Count]([]int{3, 3})
	require.NoError(t, err)
	for _, p := range [][]uint64{{0, 0}, {7, 7}, {1, 6}} {
		require.NoError(t, c.Insert(p, 1))
	}
	require.NoError(t, c.CheckInvariants())
	return c
}

func TestAudit_DetectsRefcountDrift(t *testing.T) {
	c := corruptibleCube(t)

	c.dims[0].Nodes.Retain(c.root)
	err := c.CheckInvariants()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvariantViolation, apperrors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "I2")
}

func TestAudit_DetectsUnreachableNode(t *testing.T) {
	c := corruptibleCube(t)

	// allocate a slot and pin it without linking it anywhere
	h := c.dims[1].insert(Node{Left: None, Right: None, Next: None})
	c.dims[1].Nodes.Retain(h)

	err := c.CheckInvariants()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "I1")
}

func TestAudit_DetectsBrokenSingletonSharing(t *testing.T) {
	c := corruptibleCube(t)

	// find a singleton in dimension 0 and give it a next of its own
	d := c.dims[0]
	for i := 0; i < d.Nodes.Len(); i++ {
		h := Handle(i)
		if d.Nodes.Refs(h) == 0 || !d.Nodes.At(h).IsSingleton() {
			continue
		}
		rogue := c.dims[1].insert(*c.dims[1].Nodes.At(c.nextOf(0, h)))
		c.setNext(0, h, rogue)

		err := c.CheckInvariants()
		require.Error(t, err)
		return
	}
	t.Fatal("no singleton found to corrupt")
}

func TestAudit_DetectsPartitionSumViolation(t *testing.T) {
	c := corruptibleCube(t)

	// find a fork and poison its aggregate summary
	for dim := len(c.dims) - 1; dim >= 0; dim-- {
		d := c.dims[dim]
		for i := 0; i < d.Nodes.Len(); i++ {
			h := Handle(i)
			if d.Nodes.Refs(h) == 0 || !d.Nodes.At(h).IsFork() {
				continue
			}
			sum := c.summaryIndex(h, dim)
			*c.summaries.At(sum) += 100

			err := c.CheckInvariants()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "I4")
			return
		}
	}
	t.Fatal("no fork found to corrupt")
}

func TestAudit_DetectsParentsDrift(t *testing.T) {
	c := corruptibleCube(t)

	// drop one recorded parent edge without touching the real edges
	d := c.dims[0]
	for i := 0; i < d.Nodes.Len(); i++ {
		if d.Nodes.Refs(Handle(i)) > 0 && len(d.parents[i]) > 0 {
			d.parents[i] = d.parents[i][:len(d.parents[i])-1]
			require.Error(t, c.CheckInvariants())
			return
		}
	}
	t.Fatal("no parent edge found to corrupt")
}
