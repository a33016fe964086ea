package cube

// RangeQuery delivers to the policy the summary of every stored record whose
// address tuple lies inside the orthogonal box described by bounds: one
// half-open interval [lo, hi) per dimension. The traversal is read-only, so
// any number of queries may run concurrently on an unchanging cube.
func (c *Cube[S]) RangeQuery(policy SummaryPolicy[S], bounds [][2]uint64) error {
	if err := c.checkBounds(bounds); err != nil {
		return err
	}
	c.rangeQuery(policy, bounds, c.root, 0, 0, uint64(1)<<c.dims[0].Width)
	return nil
}

func (c *Cube[S]) rangeQuery(policy SummaryPolicy[S], bounds [][2]uint64,
	node Handle, dim int, nodeLo, nodeHi uint64) {

	if node == None {
		return
	}
	n := c.dims[dim].Nodes.At(node)
	qLo, qHi := bounds[dim][0], bounds[dim][1]

	switch {
	case qHi <= nodeLo || qLo >= nodeHi:
		// provably empty overlap
		return
	case nodeLo >= qLo && nodeHi <= qHi:
		// node cell entirely inside the query; move on to the next
		// dimension, or report the summary from the last one
		if dim+1 == len(c.dims) {
			policy.Add(*c.summaries.At(n.Next))
		} else {
			c.rangeQuery(policy, bounds, n.Next, dim+1,
				0, uint64(1)<<c.dims[dim+1].Width)
		}
	default:
		mid := nodeLo + (nodeHi-nodeLo)/2
		c.rangeQuery(policy, bounds, n.Left, dim, nodeLo, mid)
		c.rangeQuery(policy, bounds, n.Right, dim, mid, nodeHi)
	}
}

// Total returns the monoid sum over the full extent of every dimension.
func (c *Cube[S]) Total() S {
	var p CombinePolicy[S]
	bounds := make([][2]uint64, len(c.dims))
	for d, dm := range c.dims {
		bounds[d] = [2]uint64{0, uint64(1) << dm.Width}
	}
	_ = c.RangeQuery(&p, bounds)
	return p.Total
}
