package cube

import (
	"github.com/nanocube/pkg/collections"
	"github.com/nanocube/pkg/errors"
)

// propagation work stacks are short-lived and hot; recycle them
var propagateStacks = collections.NewSlicePool[Handle](64)

// InsertGarbage adds a record with the baseline strategy: build a fresh
// spine for the record, merge it with the whole existing cube, swing the
// root reference, and clean up whatever the merge left unreferenced.
//
// Correct by construction and useful as the reference insertion for property
// tests, but wasteful: every insert re-walks the full height of every
// reachable path.
func (c *Cube[S]) InsertGarbage(addr []uint64, s S) error {
	if c.sealed {
		return errors.ErrSealedCube
	}
	if err := c.checkAddress(addr); err != nil {
		return err
	}

	c.resetSpine()
	spine := c.spineAt(0, 0, s, addr)
	newRoot := c.merge(0, spine, c.root)

	c.retain(newRoot, 0)
	c.release(c.root, 0)
	c.root = newRoot

	// the merge may have copied rather than adopted the spine; if nothing
	// references its base, cascade-release the whole chain now
	if c.dims[0].Nodes.Refs(spine) == 0 {
		c.retain(spine, 0)
		c.release(spine, 0)
	}
	return nil
}

// Insert adds a record with the in-place nanocube strategy: a top-down
// traversal that mutates nodes reached exclusively by the paths being
// updated, and copies (via small merges) where structure is shared with
// paths the record does not touch.
func (c *Cube[S]) Insert(addr []uint64, s S) error {
	if c.sealed {
		return errors.ErrSealedCube
	}
	if err := c.checkAddress(addr); err != nil {
		return err
	}

	c.resetSpine()
	if c.root == None {
		c.root = c.spineAt(0, 0, s, addr)
		c.retain(c.root, 0)
		return nil
	}
	c.update(0, 0, s, addr, []Handle{c.root}, nil)
	c.releaseSpineGarbage()
	return nil
}

// update advances one refinement step of the in-place insert.
//
// nodes is the set of live dimension-dim nodes at depth that must reflect
// the new record; forks collects the next handles of forks and leaves passed
// on the way, whose next-dimension subtrees are updated once this dimension
// is exhausted.
func (c *Cube[S]) update(dim, depth int, s S, addr []uint64, nodes, forks []Handle) {
	if dim == len(c.dims) {
		// summary level: compose the record into each reached summary
		for _, h := range nodes {
			slot := c.summaries.At(h)
			*slot = (*slot).Plus(s)
		}
		return
	}

	d := c.dims[dim]
	if depth == d.Width {
		for _, h := range nodes {
			forks = appendUniqueHandle(forks, d.Nodes.At(h).Next)
		}
		c.update(dim+1, 0, s, addr, forks, nil)
		return
	}

	bit := pathBit(addr[dim], d.Width, depth)

	// partition the work set by the child each node refines into along the
	// path bit; forks contribute their next handle in passing, since their
	// aggregate lives in the following dimension
	type group struct {
		child   Handle
		callers []Handle
	}
	var groups []group
	byChild := make(map[Handle]int)
	for _, h := range nodes {
		n := *d.Nodes.At(h)
		if n.IsFork() {
			forks = appendUniqueHandle(forks, n.Next)
		}
		child := n.Child(bit)
		if i, ok := byChild[child]; ok {
			groups[i].callers = append(groups[i].callers, h)
		} else {
			byChild[child] = len(groups)
			groups = append(groups, group{child: child, callers: []Handle{h}})
		}
	}

	var nextNodes []Handle
	for _, g := range groups {
		switch {
		case g.child == None:
			// the path refines into previously unseen territory: attach the
			// fresh spine suffix to every caller
			spine := c.spineAt(dim, depth+1, s, addr)
			spineNext := c.nextOf(dim, spine)
			for _, p := range g.callers {
				other := d.Nodes.At(p).OtherChild(bit)
				c.setChild(dim, p, bit, spine)
				if other != None {
					// the caller becomes a fork; its aggregate is the sum of
					// both children's
					merged := c.merge(dim+1, c.nextOf(dim, other), spineNext)
					c.setNext(dim, p, merged)
				} else {
					c.setNext(dim, p, spineNext)
				}
				c.propagateNext(dim, p)
			}

		case !c.coversParents(dim, g.child, g.callers):
			// some path through the child must not see this record: leave
			// the child intact and point the callers at a merged copy
			spine := c.spineAt(dim, depth+1, s, addr)
			merged := c.merge(dim, g.child, spine)
			mergedNext := c.nextOf(dim, merged)
			for _, p := range g.callers {
				c.setChild(dim, p, bit, merged)
				if !d.Nodes.At(p).IsFork() {
					c.setNext(dim, p, mergedNext)
					c.propagateNext(dim, p)
				}
				// a fork's next is already queued for the next dimension
			}

		default:
			// every live path through the child carries this record: keep
			// mutating in place one level down
			nextNodes = append(nextNodes, g.child)
		}
	}

	if len(nextNodes) > 0 {
		c.update(dim, depth+1, s, addr, nextNodes, forks)
	} else if len(forks) > 0 {
		c.update(dim+1, 0, s, addr, forks, nil)
	}
}

// coversParents reports whether the callers account for every left/right
// edge into the child. Callers are distinct and each is a parent of the
// child, so comparing sizes against the parents multiset suffices.
func (c *Cube[S]) coversParents(dim int, child Handle, callers []Handle) bool {
	return len(c.dims[dim].parents[child]) == len(callers)
}

// propagateNext restores the singleton-sharing invariant above a node whose
// next edge changed: every ancestor singleton overwrites its next with its
// child's, stopping at forks, whose aggregates are maintained separately.
func (c *Cube[S]) propagateNext(dim int, h Handle) {
	d := c.dims[dim]
	next := d.Nodes.At(h).Next
	sp := propagateStacks.Get()
	defer propagateStacks.Put(sp)
	stack := append(*sp, d.parents[h]...)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := d.Nodes.At(p)
		if n.IsFork() || n.Next == next {
			continue
		}
		c.setNext(dim, p, next)
		stack = append(stack, d.parents[p]...)
	}
	*sp = stack[:0]
}

func appendUniqueHandle(hs []Handle, h Handle) []Handle {
	for _, e := range hs {
		if e == h {
			return hs
		}
	}
	return append(hs, h)
}
