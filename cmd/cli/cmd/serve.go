package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/internal/repository"
	"github.com/nanocube/internal/server"
	"github.com/nanocube/pkg/model"
	"github.com/nanocube/pkg/telemetry"
)

var (
	serveImage   string
	servePort    int
	serveDataset string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a cube image over HTTP",
	Long: `Load a cube image and start the HTTP query façade.

The server exposes:
  POST /api/query     clause queries (find, split, range, all) per dimension
  POST /api/range     orthogonal range counts
  GET  /api/schema    widths and slab statistics
  GET  /api/dot       GraphViz dump of the live DAG
  GET  /api/check     invariant audit
  GET  /api/datasets  dataset catalog`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveImage, "input", "i", "", "Cube image to serve (required)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port for the HTTP server (defaults from config)")
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "Dataset UUID this cube belongs to")
	serveCmd.MarkFlagRequired("input")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	ctx := cmd.Context()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry, Version)
	if err != nil {
		log.Warn("telemetry init failed: %v", err)
	} else {
		defer shutdownTelemetry(context.Background())
	}

	c, err := loadCubeImage(serveImage)
	if err != nil {
		return err
	}
	log.Info("Loaded cube %s: %d dimensions, widths %v", serveImage, c.NumDims(), c.Widths())

	serverCfg := cfg.Server
	if servePort != 0 {
		serverCfg.Port = servePort
	}

	var repos *repository.Repositories
	var dataset *model.DatasetInfo
	if serveDataset != "" {
		db, err := repository.NewGormDB(&cfg.Database, cfg.Telemetry.Enabled)
		if err != nil {
			return err
		}
		repos, err = repository.NewRepositories(db)
		if err != nil {
			return err
		}
		defer repos.Close()

		dataset, err = repos.Dataset.GetByUUID(ctx, serveDataset)
		if err != nil {
			log.Warn("dataset %s not in catalog: %v", serveDataset, err)
			dataset = &model.DatasetInfo{UUID: serveDataset}
		}
	}

	srv := server.New(c, dataset, repos, serverCfg, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down server...")
		grace := time.Duration(cfg.Server.ShutdownGraceS) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func loadCubeImage(path string) (*cube.Cube[cube.Count], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cube.Read[cube.Count](f, cube.CountCodec{})
}
