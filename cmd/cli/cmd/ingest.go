package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/internal/ingest"
	"github.com/nanocube/internal/repository"
	"github.com/nanocube/internal/storage"
	"github.com/nanocube/pkg/model"
	"github.com/nanocube/pkg/utils"
)

var (
	ingestInput    string
	ingestOutput   string
	ingestLevel    int
	ingestName     string
	ingestUUID     string
	ingestColumns  string
	ingestRegister bool
	ingestFromObj  bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a dataset into a cube image",
	Long: `Read a delimited lat/lon dataset, project each row onto quadtree
addresses, insert everything into a fresh cube, and write the cube image.

The input may be a plain, gzip- or zstd-compressed file; with --from-storage
the input is a key into the configured storage backend instead of a local
path. Column pairs default to the four-column flights layout
(origin lat/lon, destination lat/lon).`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestInput, "input", "i", "", "Input dataset file or storage key (required)")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "Output cube image path (defaults into the data dir)")
	ingestCmd.Flags().IntVarP(&ingestLevel, "level", "l", 0, "Quadtree level (defaults from config)")
	ingestCmd.Flags().StringVarP(&ingestName, "name", "n", "", "Dataset name for the catalog")
	ingestCmd.Flags().StringVar(&ingestUUID, "uuid", "", "Dataset UUID (auto-generated if empty)")
	ingestCmd.Flags().StringVar(&ingestColumns, "columns", "", "Lat/lon column pairs, e.g. 0:1,2:3")
	ingestCmd.Flags().BoolVar(&ingestRegister, "register", false, "Register the dataset in the catalog database")
	ingestCmd.Flags().BoolVar(&ingestFromObj, "from-storage", false, "Treat --input as a storage key")
	ingestCmd.MarkFlagRequired("input")
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	ctx := cmd.Context()
	timer := utils.NewTimer("ingest")

	level := ingestLevel
	if level == 0 {
		level = cfg.Cube.QuadLevel
	}

	format, err := parseColumns(ingestColumns)
	if err != nil {
		return err
	}

	loader := ingest.NewLoader(ingest.Projection{Level: level}, format,
		cfg.Cube.ParserWorkers, log)

	c, err := cube.New[cube.Count](loader.Widths())
	if err != nil {
		return err
	}

	reader, sourceURI, err := openInput(ctx)
	if err != nil {
		return err
	}

	log.Info("Ingesting %s at quadtree level %d", sourceURI, level)
	stopLoad := timer.StartPhase("load")
	stats, err := loader.Load(ctx, c, ingestInput, reader)
	stopLoad()
	if err != nil {
		return err
	}

	uuid := ingestUUID
	if uuid == "" {
		uuid = fmt.Sprintf("ds-%d", os.Getpid())
	}
	output := ingestOutput
	if output == "" {
		if err := cfg.EnsureDataDir(); err != nil {
			return err
		}
		output = cfg.CubeImagePath(uuid)
	}

	stopWrite := timer.StartPhase("write image")
	if err := writeCubeImage(c, output); err != nil {
		return err
	}
	stopWrite()

	if ingestRegister {
		if err := registerDataset(ctx, uuid, sourceURI, stats, loader.Widths()); err != nil {
			return err
		}
	}

	st := c.CollectStats()
	log.Info("Rows: %d (bad: %d)", stats.Rows, stats.BadRows)
	for d, ds := range st.Dims {
		log.Info("Dim %d: %d live nodes (width %d)", d, ds.Live, ds.Width)
	}
	log.Info("Summaries: %d", st.Summaries.Live)
	log.Info("Cube image: %s", output)
	timer.Report(log)
	return nil
}

// openInput opens the dataset from disk or from the storage backend.
func openInput(ctx context.Context) (io.ReadCloser, string, error) {
	if ingestFromObj {
		store, err := storage.New(&cfg.Storage)
		if err != nil {
			return nil, "", err
		}
		r, err := store.Fetch(ctx, ingestInput)
		if err != nil {
			return nil, "", err
		}
		return r, store.URL(ingestInput), nil
	}
	f, err := os.Open(ingestInput)
	if err != nil {
		return nil, "", err
	}
	return f, ingestInput, nil
}

func writeCubeImage(c *cube.Cube[cube.Count], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.WriteTo(f, cube.CountCodec{})
}

func registerDataset(ctx context.Context, uuid, sourceURI string, stats ingest.Stats, widths []int) error {
	db, err := repository.NewGormDB(&cfg.Database, cfg.Telemetry.Enabled)
	if err != nil {
		return err
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}
	defer repos.Close()

	name := ingestName
	if name == "" {
		name = ingestInput
	}
	return repos.Dataset.Register(ctx, &model.DatasetInfo{
		UUID:      uuid,
		Name:      name,
		SourceURI: sourceURI,
		Rows:      stats.Rows,
		BadRows:   stats.BadRows,
		Widths:    widths,
	})
}

// parseColumns parses "0:1,2:3" into lat/lon column pairs.
func parseColumns(s string) (ingest.Format, error) {
	if s == "" {
		return ingest.DefaultFormat, nil
	}
	format := ingest.Format{Delimiter: "\t"}
	for _, pair := range strings.Split(s, ",") {
		var lat, lon int
		if _, err := fmt.Sscanf(pair, "%d:%d", &lat, &lon); err != nil {
			return format, fmt.Errorf("invalid column pair %q: %w", pair, err)
		}
		format.Pairs = append(format.Pairs, [2]int{lat, lon})
	}
	return format, nil
}
