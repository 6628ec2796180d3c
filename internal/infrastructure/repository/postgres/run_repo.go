// Package postgres implements relational persistence for relabeling runs.
package postgres

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openpbrl/openpbrl/internal/domain/run"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/types"
)

// RunRepository persists relabeling runs
type RunRepository interface {
	Create(ctx context.Context, r *run.Run) error
	Get(ctx context.Context, id string) (*run.Run, error)
	UpdateStatus(ctx context.Context, id string, status types.RunStatus, errMsg string) error
	SetAccuracy(ctx context.Context, id string, accuracy float64) error
	List(ctx context.Context, limit, offset int) ([]*run.Run, error)
	Close() error
}

type runRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

// NewRunRepository opens the database and migrates the run table.
func NewRunRepository(cfg config.DatabaseConfig, logger logging.Logger) (RunRepository, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRunStoreUnavailable.Code, "open postgres")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRunStoreUnavailable.Code, "access connection pool")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&run.Run{}); err != nil {
		return nil, errors.Wrap(err, errors.ErrRunStoreUnavailable.Code, "migrate run table")
	}
	return &runRepository{db: db, logger: logger}, nil
}

func (r *runRepository) Create(ctx context.Context, rec *run.Run) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrap(err, errors.ErrRunPersistFailed.Code, "create run")
	}
	return nil
}

func (r *runRepository) Get(ctx context.Context, id string) (*run.Run, error) {
	var rec run.Run
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.FromCodef(errors.ErrRunNotFound, "run %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRunPersistFailed.Code, "get run")
	}
	return &rec, nil
}

func (r *runRepository) UpdateStatus(ctx context.Context, id string, status types.RunStatus, errMsg string) error {
	updates := map[string]interface{}{"status": status, "error": errMsg}
	res := r.db.WithContext(ctx).Model(&run.Run{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return errors.Wrap(res.Error, errors.ErrRunPersistFailed.Code, "update run status")
	}
	if res.RowsAffected == 0 {
		return errors.FromCodef(errors.ErrRunNotFound, "run %s", id)
	}
	return nil
}

func (r *runRepository) SetAccuracy(ctx context.Context, id string, accuracy float64) error {
	res := r.db.WithContext(ctx).Model(&run.Run{}).Where("id = ?", id).Update("accuracy", accuracy)
	if res.Error != nil {
		return errors.Wrap(res.Error, errors.ErrRunPersistFailed.Code, "update run accuracy")
	}
	if res.RowsAffected == 0 {
		return errors.FromCodef(errors.ErrRunNotFound, "run %s", id)
	}
	return nil
}

func (r *runRepository) List(ctx context.Context, limit, offset int) ([]*run.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []*run.Run
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRunPersistFailed.Code, "list runs")
	}
	return recs, nil
}

func (r *runRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
