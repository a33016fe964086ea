package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/pkg/model"
	"github.com/nanocube/pkg/writer"
)

var (
	queryImage  string
	queryBounds string
	queryPretty bool
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a range query against a cube image",
	Long: `Load a cube image and answer one orthogonal range-count query.

Bounds are half-open intervals, one lo:hi pair per dimension, joined by
commas. Omitted bounds cover the full extent of their dimension.`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryImage, "input", "i", "", "Cube image to query (required)")
	queryCmd.Flags().StringVarP(&queryBounds, "bounds", "b", "", "Bounds as lo:hi pairs, e.g. 0:16,4:8")
	queryCmd.Flags().BoolVar(&queryPretty, "pretty", false, "Pretty-print the JSON output")
	queryCmd.MarkFlagRequired("input")
}

func runQuery(cmd *cobra.Command, args []string) error {
	c, err := loadCubeImage(queryImage)
	if err != nil {
		return err
	}

	bounds, err := parseBounds(queryBounds, c.Widths())
	if err != nil {
		return err
	}

	var policy cube.CombinePolicy[cube.Count]
	if err := c.RangeQuery(&policy, bounds); err != nil {
		return err
	}

	resp := model.RangeResponse{Count: int64(policy.Total)}
	w := writer.NewJSONWriter[model.RangeResponse]()
	if queryPretty {
		w = writer.NewPrettyJSONWriter[model.RangeResponse]()
	}
	return w.Write(resp, os.Stdout)
}

// parseBounds parses "lo:hi,lo:hi" into per-dimension intervals, filling
// missing trailing dimensions with their full extent.
func parseBounds(s string, widths []int) ([][2]uint64, error) {
	bounds := make([][2]uint64, len(widths))
	for d, w := range widths {
		bounds[d] = [2]uint64{0, uint64(1) << w}
	}
	if strings.TrimSpace(s) == "" {
		return bounds, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) > len(widths) {
		return nil, fmt.Errorf("%d bound pairs for a %d-dimensional cube", len(parts), len(widths))
	}
	for d, part := range parts {
		var lo, hi uint64
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d:%d", &lo, &hi); err != nil {
			return nil, fmt.Errorf("invalid bound pair %q: %w", part, err)
		}
		bounds[d] = [2]uint64{lo, hi}
	}
	return bounds, nil
}
