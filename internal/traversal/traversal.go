// Package traversal provides per-dimension prefix queries over a cube's
// refinement trees: find a node by address prefix, split a prefix into its
// refinement frontier, and cover an interval with canonical tree nodes. All
// of them flow from a minimal cover of a 1-D interval by recursive binary
// splits; the JSON query façade is a thin layer over these.
package traversal

import (
	"github.com/nanocube/internal/cube"
	"github.com/nanocube/pkg/collections"
)

// QueryNode identifies one tree node matched by a prefix query.
type QueryNode struct {
	Index   cube.Handle `json:"index"`
	Depth   int         `json:"depth"`
	Dim     int         `json:"dim"`
	Address uint64      `json:"address"`
}

// bounded tracks a node together with the value interval it spans.
type bounded struct {
	lo, hi uint64
	index  cube.Handle
	depth  int
}

// Range collects the canonical nodes covering the half-open interval
// [lo, hi) down to the given resolution. Nodes that only partially overlap
// the interval at the resolution limit are included when
// insertPartialOverlap is set.
func Range(d *cube.Dimension, dim int, start cube.Handle, lo, hi uint64,
	resolution int, insertPartialOverlap bool) []QueryNode {

	var nodes []QueryNode
	if start == cube.None {
		return nodes
	}
	stack := collections.NewStack[bounded](d.Width + 1)
	stack.Push(bounded{lo: 0, hi: uint64(1) << d.Width, index: start, depth: 0})

	for stack.Len() > 0 {
		t, _ := stack.Pop()
		n := *d.Nodes.At(t.index)
		switch {
		case t.lo >= lo && t.hi <= hi:
			nodes = append(nodes, QueryNode{
				Index: t.index, Depth: t.depth, Dim: dim,
				Address: t.lo >> (d.Width - t.depth),
			})
		case hi <= t.lo || t.hi <= lo:
			continue
		case t.depth == resolution:
			if insertPartialOverlap {
				nodes = append(nodes, QueryNode{
					Index: t.index, Depth: t.depth, Dim: dim,
					Address: t.lo >> (d.Width - t.depth),
				})
			}
		default:
			// midpoint this way to avoid overflow on wide dimensions
			mid := t.lo + (t.hi-t.lo)/2
			if n.Left != cube.None {
				stack.Push(bounded{lo: t.lo, hi: mid, index: n.Left, depth: t.depth + 1})
			}
			if n.Right != cube.None {
				stack.Push(bounded{lo: mid, hi: t.hi, index: n.Right, depth: t.depth + 1})
			}
		}
	}
	return nodes
}

// Find walks the refinement path of value for depth steps and returns the
// node there, if any.
func Find(d *cube.Dimension, dim int, start cube.Handle, value uint64, depth int) []QueryNode {
	steps := depth
	if steps > d.Width {
		steps = d.Width
	}
	result := start
	for i := 0; i < steps; i++ {
		if result == cube.None {
			return nil
		}
		n := d.Nodes.At(result)
		if (value>>(steps-i-1))&1 == 1 {
			result = n.Right
		} else {
			result = n.Left
		}
	}
	if result == cube.None {
		return nil
	}
	return []QueryNode{{Index: result, Depth: depth, Dim: dim, Address: value}}
}

// Split locates the node at the given prefix and enumerates its refinement
// frontier: every descendant at resolution levels deeper, or at the
// dimension floor, whichever comes first.
func Split(d *cube.Dimension, dim int, start cube.Handle,
	prefix uint64, depth, resolution int) []QueryNode {

	root := Find(d, dim, start, prefix, depth)
	if len(root) == 0 {
		return nil
	}

	var nodes []QueryNode
	stack := collections.NewStack[QueryNode](resolution + 1)
	stack.Push(root[0])

	for stack.Len() > 0 {
		t, _ := stack.Pop()
		n := *d.Nodes.At(t.Index)
		if t.Depth == depth+resolution || t.Depth == d.Width {
			nodes = append(nodes, t)
			continue
		}
		if n.Left != cube.None {
			stack.Push(QueryNode{
				Index: n.Left, Depth: t.Depth + 1, Dim: dim, Address: t.Address << 1,
			})
		}
		if n.Right != cube.None {
			stack.Push(QueryNode{
				Index: n.Right, Depth: t.Depth + 1, Dim: dim, Address: t.Address<<1 | 1,
			})
		}
	}
	return nodes
}
