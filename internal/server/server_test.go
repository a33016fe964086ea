package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocube/internal/cube"
	"github.com/nanocube/pkg/config"
	"github.com/nanocube/pkg/model"
	"github.com/nanocube/pkg/utils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cube.New[cube.Count]([]int{3, 3})
	require.NoError(t, err)
	for _, p := range [][]uint64{{0, 0}, {7, 7}, {1, 6}, {0, 3}, {0, 6}} {
		require.NoError(t, c.Insert(p, 1))
	}
	return New(c, nil, nil, config.ServerConfig{Port: 0}, &utils.NullLogger{})
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleRange(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleRange, model.RangeRequest{
		Bounds: [][2]uint64{{0, 1}, {0, 7}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.RangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Count)
}

func TestHandleRange_BadBounds(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleRange, model.RangeRequest{
		Bounds: [][2]uint64{{5, 2}, {0, 8}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRange_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/range", nil)
	rec := httptest.NewRecorder()
	s.handleRange(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleQuery_Find(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleQuery, model.Query{
		"0": {Operation: model.OpFind, Prefix: &model.Prefix{Address: 0, Depth: 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results["0"], 1)
	assert.Equal(t, uint64(0), resp.Results["0"][0].Address)
}

func TestHandleQuery_SplitThenAll(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleQuery, model.Query{
		"0": {Operation: model.OpSplit, Prefix: &model.Prefix{Address: 0, Depth: 0}, Resolution: 3},
		"1": {Operation: model.OpAll},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// distinct first coordinates: 0, 1, 7
	assert.Len(t, resp.Results["0"], 3)
	assert.NotEmpty(t, resp.Results["1"])
}

func TestHandleQuery_Invalid(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleQuery, model.Query{
		"0": {Operation: "bogus"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, s.handleQuery, model.Query{
		"9": {Operation: model.OpAll},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSchema(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	rec := httptest.NewRecorder()
	s.handleSchema(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int{3, 3}, resp.Widths)
	assert.Equal(t, 2, resp.NumDims)
	assert.NotZero(t, resp.Summaries)
}

func TestHandleDot(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dot", nil)
	rec := httptest.NewRecorder()
	s.handleDot(rec, req)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph G {"))
}

func TestHandleCheck(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/check", nil)
	rec := httptest.NewRecorder()
	s.handleCheck(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleDatasets_NoCatalog(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rec := httptest.NewRecorder()
	s.handleDatasets(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
