package server

import (
	"strconv"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/internal/traversal"
	"github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/model"
)

// runQuery executes the clauses of a validated query. The walk visits
// dimensions in order starting from the root; a dimension without a clause
// is crossed through its full refinement frontier, so clause sets need not
// be contiguous.
func (s *Server) runQuery(q model.Query) (*model.QueryResponse, error) {
	maxDim := 0
	for key := range q {
		dim := model.Dim(key)
		if dim >= s.cube.NumDims() {
			return nil, errors.Newf(errors.CodeInvalidInput,
				"clause dimension %d out of range, cube has %d dimensions", dim, s.cube.NumDims())
		}
		if dim > maxDim {
			maxDim = dim
		}
	}

	resp := &model.QueryResponse{Results: make(map[string][]model.QueryNodeResult)}
	starts := []cube.Handle{s.cube.Root()}

	for dim := 0; dim <= maxDim; dim++ {
		key := strconv.Itoa(dim)
		clause, hasClause := q[key]
		if !hasClause {
			clause = model.QueryClause{Operation: model.OpAll}
		}
		d := s.cube.Dim(dim)

		var matched []traversal.QueryNode
		for _, start := range starts {
			if start == cube.None {
				continue
			}
			matched = append(matched, s.runClause(d, dim, start, clause)...)
		}

		if hasClause {
			results := make([]model.QueryNodeResult, 0, len(matched))
			for _, qn := range matched {
				results = append(results, model.QueryNodeResult{
					Index:   int32(qn.Index),
					Depth:   qn.Depth,
					Dim:     qn.Dim,
					Address: qn.Address,
				})
			}
			resp.Results[key] = results
		}

		// descend into the next dimension through the matched nodes
		if dim+1 < s.cube.NumDims() {
			next := make([]cube.Handle, 0, len(matched))
			for _, qn := range matched {
				next = append(next, d.Nodes.At(qn.Index).Next)
			}
			starts = next
		}
	}
	return resp, nil
}

func (s *Server) runClause(d *cube.Dimension, dim int, start cube.Handle,
	clause model.QueryClause) []traversal.QueryNode {

	switch clause.Operation {
	case model.OpFind:
		return traversal.Find(d, dim, start, clause.Prefix.Address, clause.Prefix.Depth)
	case model.OpSplit:
		return traversal.Split(d, dim, start,
			clause.Prefix.Address, clause.Prefix.Depth, clause.Resolution)
	case model.OpRange:
		lo := clause.LowerBound.Address << uint(max(d.Width-clause.LowerBound.Depth, 0))
		hi := clause.UpperBound.Address << uint(max(d.Width-clause.UpperBound.Depth, 0))
		return traversal.Range(d, dim, start, lo, hi, d.Width, false)
	case model.OpAll:
		return traversal.Split(d, dim, start, 0, 0, d.Width)
	default:
		return nil
	}
}
