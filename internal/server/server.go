// Package server exposes the cube over HTTP: a JSON clause query endpoint
// in the style of the classic nanocube front end, an orthogonal range-count
// endpoint, and schema/debug outputs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/internal/repository"
	"github.com/nanocube/pkg/config"
	apperrors "github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/model"
	"github.com/nanocube/pkg/utils"
)

const tracerName = "github.com/nanocube/internal/server"

// Server serves one cube.
type Server struct {
	cube    *cube.Cube[cube.Count]
	dataset *model.DatasetInfo
	repos   *repository.Repositories
	cfg     config.ServerConfig
	logger  utils.Logger
	server  *http.Server
}

// New creates a server for the given cube. dataset and repos may be nil
// when no catalog is configured.
func New(c *cube.Cube[cube.Count], dataset *model.DatasetInfo,
	repos *repository.Repositories, cfg config.ServerConfig, logger utils.Logger) *Server {
	return &Server{
		cube:    c,
		dataset: dataset,
		repos:   repos,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/range", s.handleRange)
	mux.HandleFunc("/api/schema", s.handleSchema)
	mux.HandleFunc("/api/dot", s.handleDot)
	mux.HandleFunc("/api/check", s.handleCheck)
	mux.HandleFunc("/api/datasets", s.handleDatasets)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutS) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutS) * time.Second,
	}

	s.logger.Info("Serving cube at http://localhost:%d", s.cfg.Port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetErrorCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeMalformedBounds, apperrors.CodeAddressRange:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{
		"error": apperrors.GetErrorMessage(err),
		"code":  apperrors.GetErrorCode(err),
	})
}

// handleRange answers an orthogonal range-count request.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "range")
	defer span.End()

	var req model.RangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidInput, "decode request", err))
		return
	}

	started := time.Now()
	var policy cube.CombinePolicy[cube.Count]
	if err := s.cube.RangeQuery(&policy, req.Bounds); err != nil {
		writeError(w, err)
		return
	}
	elapsed := time.Since(started).Microseconds()
	span.SetAttributes(attribute.Int64("nanocube.count", int64(policy.Total)))

	resp := model.RangeResponse{Count: int64(policy.Total), Elapsed: elapsed}
	s.logQuery(ctx, "range", req, resp, elapsed)
	writeJSON(w, http.StatusOK, resp)
}

// handleQuery answers a clause query: per-dimension find/split/range/all
// operations against the refinement trees.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "query")
	defer span.End()

	var q model.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeInvalidInput, "decode query", err))
		return
	}
	if err := q.Validate(); err != nil {
		writeError(w, err)
		return
	}

	started := time.Now()
	resp, err := s.runQuery(q)
	if err != nil {
		writeError(w, err)
		return
	}
	elapsed := time.Since(started).Microseconds()
	span.SetAttributes(attribute.Int("nanocube.clauses", len(q)))

	s.logQuery(ctx, "query", q, resp, elapsed)
	writeJSON(w, http.StatusOK, resp)
}

// handleSchema describes the served cube.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	stats := s.cube.CollectStats()
	live := make([]int, len(stats.Dims))
	for i, d := range stats.Dims {
		live[i] = d.Live
	}
	resp := model.SchemaResponse{
		Widths:    s.cube.Widths(),
		NumDims:   s.cube.NumDims(),
		Root:      int32(s.cube.Root()),
		LiveNodes: live,
		Summaries: stats.Summaries.Live,
	}
	if s.dataset != nil {
		resp.Dataset = s.dataset.UUID
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDot streams the GraphViz dump of the live DAG.
func (s *Server) handleDot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	if err := s.cube.WriteDot(w, false); err != nil {
		s.logger.Error("dot dump failed: %v", err)
	}
}

// handleCheck runs the invariant auditor.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.cube.CheckInvariants(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "fail",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDatasets lists the dataset catalog.
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if s.repos == nil {
		writeJSON(w, http.StatusOK, []*model.DatasetInfo{})
		return
	}
	datasets, err := s.repos.Dataset.List(r.Context(), 100)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, datasets)
}

// logQuery records a served query in the catalog, when one is configured.
func (s *Server) logQuery(ctx context.Context, kind string, req, resp interface{}, elapsedUS int64) {
	if s.repos == nil || s.dataset == nil {
		return
	}
	reqJSON, _ := json.Marshal(req)
	respJSON, _ := json.Marshal(resp)
	err := s.repos.QueryLog.Log(ctx, &repository.QueryRecord{
		DatasetUUID: s.dataset.UUID,
		Kind:        kind,
		Request:     string(reqJSON),
		Result:      string(respJSON),
		ElapsedUS:   elapsedUS,
	})
	if err != nil {
		s.logger.Warn("query log write failed: %v", err)
	}
}
