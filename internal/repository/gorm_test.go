package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/model"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repos, err := NewRepositories(db)
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestDatasetRepository_RegisterAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	ds := &model.DatasetInfo{
		UUID:      "ds-1",
		Name:      "flights",
		SourceURI: "datasets/flights.tsv",
		Rows:      100000,
		BadRows:   17,
		Widths:    []int{20, 20},
	}
	require.NoError(t, repos.Dataset.Register(ctx, ds))
	assert.False(t, ds.CreatedAt.IsZero())

	got, err := repos.Dataset.GetByUUID(ctx, "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "flights", got.Name)
	assert.Equal(t, int64(100000), got.Rows)
	assert.Equal(t, []int{20, 20}, got.Widths)
}

func TestDatasetRepository_GetMissing(t *testing.T) {
	repos := newTestRepos(t)

	_, err := repos.Dataset.GetByUUID(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetErrorCode(err))
}

func TestDatasetRepository_List(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	for _, uuid := range []string{"a", "b", "c"} {
		require.NoError(t, repos.Dataset.Register(ctx, &model.DatasetInfo{
			UUID: uuid, Name: uuid, Widths: []int{4},
		}))
	}

	got, err := repos.Dataset.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// most recent first
	assert.Equal(t, "c", got[0].UUID)
	assert.Equal(t, "b", got[1].UUID)
}

func TestQueryLogRepository(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	rec := &QueryRecord{
		DatasetUUID: "ds-1",
		Kind:        "range",
		Request:     `{"bounds":[[0,16]]}`,
		Result:      `{"count":42}`,
		ElapsedUS:   120,
	}
	require.NoError(t, repos.QueryLog.Log(ctx, rec))
	assert.NotZero(t, rec.ID)

	require.NoError(t, repos.QueryLog.Log(ctx, &QueryRecord{
		DatasetUUID: "ds-1", Kind: "find",
	}))
	require.NoError(t, repos.QueryLog.Log(ctx, &QueryRecord{
		DatasetUUID: "other", Kind: "range",
	}))

	recent, err := repos.QueryLog.RecentByDataset(ctx, "ds-1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "find", recent[0].Kind)
}

func TestRepositories_HealthCheck(t *testing.T) {
	repos := newTestRepos(t)
	assert.NoError(t, repos.HealthCheck(context.Background()))
}
