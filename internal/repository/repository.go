// Package repository provides the dataset catalog: which datasets were
// ingested into which cube images, and an audit trail of served queries.
package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/nanocube/pkg/model"
)

// DatasetRepository records ingested datasets.
type DatasetRepository interface {
	// Register stores a new dataset entry.
	Register(ctx context.Context, ds *model.DatasetInfo) error

	// GetByUUID retrieves one dataset.
	GetByUUID(ctx context.Context, uuid string) (*model.DatasetInfo, error)

	// List retrieves the most recent datasets.
	List(ctx context.Context, limit int) ([]*model.DatasetInfo, error)
}

// QueryLogRepository records served queries for auditing.
type QueryLogRepository interface {
	// Log stores one query record.
	Log(ctx context.Context, rec *QueryRecord) error

	// RecentByDataset retrieves the latest query records of a dataset.
	RecentByDataset(ctx context.Context, datasetUUID string, limit int) ([]*QueryRecord, error)
}

// QueryRecord is one served query.
type QueryRecord struct {
	ID          int64     `json:"id"`
	DatasetUUID string    `json:"dataset_uuid"`
	Kind        string    `json:"kind"`
	Request     string    `json:"request"`
	Result      string    `json:"result"`
	ElapsedUS   int64     `json:"elapsed_us"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repositories bundles the catalog repositories over one connection.
type Repositories struct {
	Dataset  DatasetRepository
	QueryLog QueryLogRepository
	gormDB   *gorm.DB
}

// NewRepositories creates all repositories using GORM and migrates the
// schema.
func NewRepositories(gormDB *gorm.DB) (*Repositories, error) {
	if err := gormDB.AutoMigrate(&datasetRow{}, &queryLogRow{}); err != nil {
		return nil, err
	}
	return &Repositories{
		Dataset:  &gormDatasetRepository{db: gormDB},
		QueryLog: &gormQueryLogRepository{db: gormDB},
		gormDB:   gormDB,
	}, nil
}

// Close closes the database connection.
func (r *Repositories) Close() error {
	sqlDB, err := r.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is still alive.
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying sql.DB connection.
func (r *Repositories) DB() *sql.DB {
	sqlDB, _ := r.gormDB.DB()
	return sqlDB
}
