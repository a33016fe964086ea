package cube

import (
	"fmt"
	"io"
)

// WriteDot emits the cube as a GraphViz digraph: one subgraph cluster per
// dimension, node labels "index:next", and left/right edges labelled 0/1.
// Garbage slots are skipped unless drawGarbage is set.
func (c *Cube[S]) WriteDot(w io.Writer, drawGarbage bool) error {
	if _, err := fmt.Fprintf(w, "digraph G {\n  splines=line;\n"); err != nil {
		return err
	}
	for d, dm := range c.dims {
		fmt.Fprintf(w, " subgraph cluster_%d {\n", d)
		fmt.Fprintf(w, " label=\"Dim. %d\";\n", d)
		for i := 0; i < dm.Nodes.Len(); i++ {
			if !drawGarbage && dm.Nodes.Refs(Handle(i)) == 0 {
				continue
			}
			n := dm.Nodes.At(Handle(i))
			if n.Next == None {
				fmt.Fprintf(w, "  \"%d_%d\" [label=\"%d:null\"];\n", i, d, i)
			} else {
				fmt.Fprintf(w, "  \"%d_%d\" [label=\"%d:%d\"];\n", i, d, i, n.Next)
			}
		}
		for i := 0; i < dm.Nodes.Len(); i++ {
			if !drawGarbage && dm.Nodes.Refs(Handle(i)) == 0 {
				continue
			}
			n := dm.Nodes.At(Handle(i))
			if n.Left != None {
				fmt.Fprintf(w, "  \"%d_%d\" -> \"%d_%d\" [label=\"0\"];\n", i, d, n.Left, d)
			}
			if n.Right != None {
				fmt.Fprintf(w, "  \"%d_%d\" -> \"%d_%d\" [label=\"1\"];\n", i, d, n.Right, d)
			}
		}
		fmt.Fprintf(w, "}\n")
	}
	_, err := fmt.Fprintf(w, "}\n")
	return err
}

// DumpInternals lists every live node and summary with its refcount. With
// showGarbage set, free slots are listed too.
func (c *Cube[S]) DumpInternals(w io.Writer, showGarbage bool) {
	for d, dm := range c.dims {
		fmt.Fprintf(w, "Dim %d:\n", d)
		for i := 0; i < dm.Nodes.Len(); i++ {
			refs := dm.Nodes.Refs(Handle(i))
			if !showGarbage && refs == 0 {
				continue
			}
			n := dm.Nodes.At(Handle(i))
			fmt.Fprintf(w, "  %d: %d:%d:%d (%d)\n", i, n.Left, n.Right, n.Next, refs)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "Summaries:\n")
	for i := 0; i < c.summaries.Len(); i++ {
		refs := c.summaries.Refs(Handle(i))
		if !showGarbage && refs == 0 {
			continue
		}
		fmt.Fprintf(w, "  %d: %v (%d)\n", i, *c.summaries.At(Handle(i)), refs)
	}
}

// Stats reports per-dimension slab occupancy.
type Stats struct {
	Root      Handle `json:"root"`
	Dims      []DimStats
	Summaries SlabStats
}

// DimStats is the occupancy of one dimension's slab.
type DimStats struct {
	Width int
	Slots int
	Live  int
	Free  int
}

// SlabStats is the occupancy of the summary slab.
type SlabStats struct {
	Slots int
	Live  int
	Free  int
}

// CollectStats gathers slab occupancy numbers for reporting.
func (c *Cube[S]) CollectStats() Stats {
	st := Stats{Root: c.root}
	for _, dm := range c.dims {
		st.Dims = append(st.Dims, DimStats{
			Width: dm.Width,
			Slots: dm.Nodes.Len(),
			Live:  dm.Nodes.Live(),
			Free:  dm.Nodes.FreeLen(),
		})
	}
	st.Summaries = SlabStats{
		Slots: c.summaries.Len(),
		Live:  c.summaries.Live(),
		Free:  c.summaries.FreeLen(),
	}
	return st
}
