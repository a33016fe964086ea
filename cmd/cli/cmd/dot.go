package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dotImage   string
	dotOutput  string
	dotGarbage bool
)

// dotCmd represents the dot command
var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Write a GraphViz dump of a cube image",
	Long: `Load a cube image and emit its DAG in GraphViz format: one cluster
per dimension, nodes labelled index:next, left/right edges labelled 0/1.
Useful for eyeballing small cubes while debugging insert behavior.`,
	RunE: runDot,
}

func init() {
	rootCmd.AddCommand(dotCmd)

	dotCmd.Flags().StringVarP(&dotImage, "input", "i", "", "Cube image to dump (required)")
	dotCmd.Flags().StringVarP(&dotOutput, "output", "o", "", "Output file (stdout when empty)")
	dotCmd.Flags().BoolVar(&dotGarbage, "garbage", false, "Include free slots in the dump")
	dotCmd.MarkFlagRequired("input")
}

func runDot(cmd *cobra.Command, args []string) error {
	c, err := loadCubeImage(dotImage)
	if err != nil {
		return err
	}

	out := os.Stdout
	if dotOutput != "" {
		f, err := os.Create(dotOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return c.WriteDot(out, dotGarbage)
}
