package repository

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/nanocube/pkg/errors"
	"github.com/nanocube/pkg/model"
)

// datasetRow is the datasets table.
type datasetRow struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UUID      string    `gorm:"column:uuid;type:varchar(64);uniqueIndex"`
	Name      string    `gorm:"column:name;type:varchar(256)"`
	SourceURI string    `gorm:"column:source_uri;type:varchar(512)"`
	Rows      int64     `gorm:"column:rows"`
	BadRows   int64     `gorm:"column:bad_rows"`
	Widths    string    `gorm:"column:widths;type:varchar(256)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (datasetRow) TableName() string { return "datasets" }

func (r *datasetRow) toModel() (*model.DatasetInfo, error) {
	widths, err := model.DecodeWidths(r.Widths)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "decode widths")
	}
	return &model.DatasetInfo{
		UUID:      r.UUID,
		Name:      r.Name,
		SourceURI: r.SourceURI,
		Rows:      r.Rows,
		BadRows:   r.BadRows,
		Widths:    widths,
		CreatedAt: r.CreatedAt,
	}, nil
}

// queryLogRow is the query_log table.
type queryLogRow struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DatasetUUID string    `gorm:"column:dataset_uuid;type:varchar(64);index"`
	Kind        string    `gorm:"column:kind;type:varchar(16)"`
	Request     string    `gorm:"column:request;type:text"`
	Result      string    `gorm:"column:result;type:text"`
	ElapsedUS   int64     `gorm:"column:elapsed_us"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (queryLogRow) TableName() string { return "query_log" }

// gormDatasetRepository implements DatasetRepository using GORM.
type gormDatasetRepository struct {
	db *gorm.DB
}

// Register stores a new dataset entry.
func (r *gormDatasetRepository) Register(ctx context.Context, ds *model.DatasetInfo) error {
	row := &datasetRow{
		UUID:      ds.UUID,
		Name:      ds.Name,
		SourceURI: ds.SourceURI,
		Rows:      ds.Rows,
		BadRows:   ds.BadRows,
		Widths:    model.EncodeWidths(ds.Widths),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "register dataset", err)
	}
	ds.CreatedAt = row.CreatedAt
	return nil
}

// GetByUUID retrieves one dataset.
func (r *gormDatasetRepository) GetByUUID(ctx context.Context, uuid string) (*model.DatasetInfo, error) {
	var row datasetRow
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&row).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Newf(errors.CodeNotFound, "dataset not found: %s", uuid)
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "get dataset", err)
	}
	return row.toModel()
}

// List retrieves the most recent datasets.
func (r *gormDatasetRepository) List(ctx context.Context, limit int) ([]*model.DatasetInfo, error) {
	var rows []datasetRow
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "list datasets", err)
	}
	out := make([]*model.DatasetInfo, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// gormQueryLogRepository implements QueryLogRepository using GORM.
type gormQueryLogRepository struct {
	db *gorm.DB
}

// Log stores one query record.
func (r *gormQueryLogRepository) Log(ctx context.Context, rec *QueryRecord) error {
	row := &queryLogRow{
		DatasetUUID: rec.DatasetUUID,
		Kind:        rec.Kind,
		Request:     rec.Request,
		Result:      rec.Result,
		ElapsedUS:   rec.ElapsedUS,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "log query", err)
	}
	rec.ID = row.ID
	rec.CreatedAt = row.CreatedAt
	return nil
}

// RecentByDataset retrieves the latest query records of a dataset.
func (r *gormQueryLogRepository) RecentByDataset(ctx context.Context, datasetUUID string, limit int) ([]*QueryRecord, error) {
	var rows []queryLogRow
	err := r.db.WithContext(ctx).
		Where("dataset_uuid = ?", datasetUUID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "list query records", err)
	}
	out := make([]*QueryRecord, 0, len(rows))
	for i := range rows {
		out = append(out, &QueryRecord{
			ID:          rows[i].ID,
			DatasetUUID: rows[i].DatasetUUID,
			Kind:        rows[i].Kind,
			Request:     rows[i].Request,
			Result:      rows[i].Result,
			ElapsedUS:   rows[i].ElapsedUS,
			CreatedAt:   rows[i].CreatedAt,
		})
	}
	return out, nil
}
