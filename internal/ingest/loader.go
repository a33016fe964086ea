package ingest

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/pkg/compression"
	"github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/parallel"
	"github.com/nanocube/pkg/utils"
)

// Format describes the column layout of a delimited dataset: one (lat, lon)
// column pair per cube dimension.
type Format struct {
	// Delimiter separates columns; tab when empty.
	Delimiter string

	// Pairs lists the lat/lon column indices, one pair per dimension.
	Pairs [][2]int
}

// DefaultFormat is the classic flights layout: origin and destination
// lat/lon pairs on four tab-separated columns.
var DefaultFormat = Format{
	Delimiter: "\t",
	Pairs:     [][2]int{{0, 1}, {2, 3}},
}

func (f Format) delimiter() string {
	if f.Delimiter == "" {
		return "\t"
	}
	return f.Delimiter
}

// maxColumn returns the highest referenced column index.
func (f Format) maxColumn() int {
	max := 0
	for _, p := range f.Pairs {
		if p[0] > max {
			max = p[0]
		}
		if p[1] > max {
			max = p[1]
		}
	}
	return max
}

// Stats summarizes one ingestion run.
type Stats struct {
	Rows    int64
	BadRows int64
}

// Loader streams a delimited dataset into a cube.
type Loader struct {
	projection Projection
	format     Format
	workers    int
	batchSize  int
	logger     utils.Logger
}

// NewLoader creates a loader for the given projection and format.
func NewLoader(projection Projection, format Format, workers int, logger utils.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Loader{
		projection: projection,
		format:     format,
		workers:    workers,
		batchSize:  4096,
		logger:     logger,
	}
}

// Widths returns the cube schema this loader feeds: one projected dimension
// per configured column pair.
func (l *Loader) Widths() []int {
	ws := make([]int, len(l.format.Pairs))
	for i := range ws {
		ws[i] = l.projection.Width()
	}
	return ws
}

// Load reads the named stream (decompressed by extension), projects every
// row and inserts it into the cube with summary one. Rows that fail to
// parse or project are counted and skipped. Projection fans out over the
// worker pool; inserts stay on this goroutine because the cube is
// single-writer.
func (l *Loader) Load(ctx context.Context, c *cube.Cube[cube.Count], name string, r io.ReadCloser) (Stats, error) {
	decoded, err := compression.WrapReader(name, r)
	if err != nil {
		return Stats{}, errors.Wrap(errors.CodeParseError, "open dataset stream", err)
	}
	defer decoded.Close()

	pool := parallel.NewWorkerPool[string, []uint64](
		parallel.DefaultPoolConfig().WithWorkers(l.workers))

	var stats Stats
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	batch := make([]string, 0, l.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		results := pool.ExecuteFunc(ctx, batch, func(_ context.Context, line string) ([]uint64, error) {
			return l.parseLine(line)
		})
		for _, res := range results {
			if res.Error != nil {
				stats.BadRows++
				l.logger.Debug("bad row: %v", res.Error)
				continue
			}
			if err := c.Insert(res.Result, 1); err != nil {
				return err
			}
			stats.Rows++
			if stats.Rows%100000 == 0 {
				l.logger.Info("ingested %d rows", stats.Rows)
			}
		}
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		batch = append(batch, line)
		if len(batch) == l.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(errors.CodeParseError, "read dataset", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}

	l.logger.Info("ingestion finished: %d rows, %d bad", stats.Rows, stats.BadRows)
	return stats, nil
}

// parseLine splits one row and projects every configured lat/lon pair.
func (l *Loader) parseLine(line string) ([]uint64, error) {
	cols := strings.Split(line, l.format.delimiter())
	if len(cols) <= l.format.maxColumn() {
		return nil, errors.Newf(errors.CodeParseError,
			"row has %d columns, need %d", len(cols), l.format.maxColumn()+1)
	}

	addr := make([]uint64, len(l.format.Pairs))
	for d, pair := range l.format.Pairs {
		lat, err := strconv.ParseFloat(strings.TrimSpace(cols[pair[0]]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.CodeParseError, "parse latitude", err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(cols[pair[1]]), 64)
		if err != nil {
			return nil, errors.Wrap(errors.CodeParseError, "parse longitude", err)
		}
		a, err := l.projection.Project(lat, lon)
		if err != nil {
			return nil, err
		}
		addr[d] = a
	}
	return addr, nil
}
