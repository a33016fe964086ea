// Package cmd implements the nanocube command line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nanocube/pkg/config"
	"github.com/nanocube/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nanocube",
	Short: "An in-memory multi-dimensional range-summary index",
	Long: `nanocube builds and serves nanocubes: in-memory indexes over
multi-dimensional point datasets that answer orthogonal range-count
queries in time proportional to the query's structural complexity.

Datasets are ingested from delimited lat/lon files, projected onto
quadtree addresses, and served over an HTTP JSON API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Log.OutputPath != "" {
			fileLogger, err := utils.NewFileLogger(utils.ParseLogLevel(cfg.Log.Level), cfg.Log.OutputPath)
			if err != nil {
				return err
			}
			logger = fileLogger
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	binName := BinName()
	rootCmd.Example = `  # Ingest a flights dataset into a cube image
  ` + binName + ` ingest -i ./flights_100K.csv.txt -o ./data/flights.ncube

  # Run a range query against a cube image
  ` + binName + ` query -i ./data/flights.ncube --bounds 0:1048576,0:1048576

  # Serve a cube over HTTP
  ` + binName + ` serve -i ./data/flights.ncube -p 8000

  # Audit the invariants of a cube image
  ` + binName + ` check -i ./data/flights.ncube`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
