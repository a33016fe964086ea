// Package model defines the request, response and catalog types shared by
// the HTTP façade, the repository and the CLI.
package model

import (
	"strconv"

	"github.com/nanocube/pkg/errors"
)

// Query operations.
const (
	OpFind  = "find"
	OpSplit = "split"
	OpRange = "range"
	OpAll   = "all"
)

// Prefix addresses a node by value and refinement depth.
type Prefix struct {
	Address uint64 `json:"address"`
	Depth   int    `json:"depth"`
}

// QueryClause is one per-dimension constraint of a traversal query.
type QueryClause struct {
	Operation  string  `json:"operation"`
	Prefix     *Prefix `json:"prefix,omitempty"`
	Resolution int     `json:"resolution,omitempty"`
	LowerBound *Prefix `json:"lowerBound,omitempty"`
	UpperBound *Prefix `json:"upperBound,omitempty"`
}

// Query maps dimension numbers (as JSON object keys) to clauses.
type Query map[string]QueryClause

// Validate checks the shape of a query: numeric dimension keys and the
// fields each operation requires.
func (q Query) Validate() error {
	if len(q) == 0 {
		return errors.New(errors.CodeInvalidInput, "query has no clauses")
	}
	for key, clause := range q {
		dim, err := strconv.Atoi(key)
		if err != nil || dim < 0 {
			return errors.Newf(errors.CodeInvalidInput, "clause key %q is not a dimension number", key)
		}
		switch clause.Operation {
		case OpFind:
			if clause.Prefix == nil {
				return errors.Newf(errors.CodeInvalidInput, "find clause for dimension %d needs a prefix", dim)
			}
		case OpSplit:
			if clause.Prefix == nil {
				return errors.Newf(errors.CodeInvalidInput, "split clause for dimension %d needs a prefix", dim)
			}
			if clause.Resolution <= 0 {
				return errors.Newf(errors.CodeInvalidInput, "split clause for dimension %d needs a positive resolution", dim)
			}
		case OpRange:
			if clause.LowerBound == nil || clause.UpperBound == nil {
				return errors.Newf(errors.CodeInvalidInput, "range clause for dimension %d needs both bounds", dim)
			}
		case OpAll:
		default:
			return errors.Newf(errors.CodeInvalidInput, "unknown operation %q for dimension %d", clause.Operation, dim)
		}
	}
	return nil
}

// Dim returns the numeric dimension of a validated clause key.
func Dim(key string) int {
	d, _ := strconv.Atoi(key)
	return d
}

// QueryNodeResult is one matched node in a traversal response.
type QueryNodeResult struct {
	Index   int32  `json:"index"`
	Depth   int    `json:"depth"`
	Dim     int    `json:"dim"`
	Address uint64 `json:"address"`
}

// QueryResponse carries traversal results keyed by dimension.
type QueryResponse struct {
	Results map[string][]QueryNodeResult `json:"results"`
}

// RangeRequest is an orthogonal range-count request.
type RangeRequest struct {
	Bounds [][2]uint64 `json:"bounds"`
}

// RangeResponse is the summed result of a range request.
type RangeResponse struct {
	Count   int64 `json:"count"`
	Elapsed int64 `json:"elapsed_us"`
}

// SchemaResponse describes the served cube.
type SchemaResponse struct {
	Widths    []int  `json:"widths"`
	NumDims   int    `json:"num_dims"`
	Root      int32  `json:"root"`
	LiveNodes []int  `json:"live_nodes"`
	Summaries int    `json:"summaries"`
	Dataset   string `json:"dataset,omitempty"`
}
