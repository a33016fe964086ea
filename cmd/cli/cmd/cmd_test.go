package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocube/internal/ingest"
)

func TestParseBounds(t *testing.T) {
	widths := []int{4, 3}

	bounds, err := parseBounds("", widths)
	require.NoError(t, err)
	assert.Equal(t, [][2]uint64{{0, 16}, {0, 8}}, bounds)

	bounds, err = parseBounds("2:9", widths)
	require.NoError(t, err)
	assert.Equal(t, [][2]uint64{{2, 9}, {0, 8}}, bounds)

	bounds, err = parseBounds("2:9,1:5", widths)
	require.NoError(t, err)
	assert.Equal(t, [][2]uint64{{2, 9}, {1, 5}}, bounds)

	_, err = parseBounds("1:2,3:4,5:6", widths)
	assert.Error(t, err)

	_, err = parseBounds("oops", widths)
	assert.Error(t, err)
}

func TestParseColumns(t *testing.T) {
	format, err := parseColumns("")
	require.NoError(t, err)
	assert.Equal(t, ingest.DefaultFormat, format)

	format, err = parseColumns("0:1,4:5")
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 1}, {4, 5}}, format.Pairs)

	_, err = parseColumns("0-1")
	assert.Error(t, err)
}
