// Package bootstrap wires configuration into concrete components shared by
// the server and CLI entrypoints.
package bootstrap

import (
	"context"

	"github.com/openpbrl/openpbrl/internal/app/service"
	"github.com/openpbrl/openpbrl/internal/infrastructure/message"
	"github.com/openpbrl/openpbrl/internal/infrastructure/message/kafka"
	"github.com/openpbrl/openpbrl/internal/infrastructure/repository/postgres"
	"github.com/openpbrl/openpbrl/internal/infrastructure/repository/redis"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage/filesystem"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage/minio"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/types"
)

// App holds the wired components and their shutdown handles.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector *metrics.MetricsCollector
	Tracer    trace.Tracer
	Store     storage.ArtifactStore
	Runs      postgres.RunRepository
	Cache     redis.CacheRepository
	Publisher message.EventPublisher
	Service   *service.RelabelService
}

// New builds the application graph from configuration. Optional backends
// (database, redis, kafka) are wired only when enabled.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		FilePath:    cfg.Logging.FilePath,
		MaxSize:     cfg.Logging.MaxSize,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAge:      cfg.Logging.MaxAge,
		Compress:    cfg.Logging.Compress,
	})
	if err != nil {
		return nil, err
	}

	collector := metrics.NewMetricsCollector(metrics.CollectorConfig{
		Namespace: cfg.Observability.MetricsNamespace,
	})

	tracer, err := trace.NewTracer(ctx, trace.TracerConfig{
		Enabled:      cfg.Observability.TracingEnabled,
		ServiceName:  cfg.Observability.ServiceName,
		Environment:  cfg.Server.Environment,
		Endpoint:     cfg.Observability.OTLPEndpoint,
		SamplingRate: 1.0,
	})
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Collector: collector,
		Tracer:    tracer,
		Store:     store,
	}

	if cfg.Database.Enabled {
		app.Runs, err = postgres.NewRunRepository(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Redis.Enabled {
		app.Cache, err = redis.NewCacheRepository(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Kafka.Enabled {
		app.Publisher, err = kafka.NewPublisher(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
	}

	app.Service = service.NewRelabelService(
		cfg, store, app.Runs, app.Cache, app.Publisher,
		logger, collector, tracer,
	)
	return app, nil
}

// Close releases every component that holds external resources.
func (a *App) Close(ctx context.Context) {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("close publisher", logging.Err(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("close cache", logging.Err(err))
		}
	}
	if a.Runs != nil {
		if err := a.Runs.Close(); err != nil {
			a.Logger.Warn("close run repository", logging.Err(err))
		}
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("close artifact store", logging.Err(err))
	}
	if err := a.Tracer.Shutdown(ctx); err != nil {
		a.Logger.Warn("shutdown tracer", logging.Err(err))
	}
	_ = a.Logger.Sync()
}

func newStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	switch cfg.Storage.Backend {
	case types.StoreBackendFilesystem:
		return filesystem.NewStore(cfg.Storage.Filesystem.Root)
	case types.StoreBackendMinIO:
		return minio.NewStore(ctx, minio.Config{
			Endpoint:        cfg.Storage.MinIO.Endpoint,
			AccessKeyID:     cfg.Storage.MinIO.AccessKeyID,
			SecretAccessKey: cfg.Storage.MinIO.SecretAccessKey,
			UseSSL:          cfg.Storage.MinIO.UseSSL,
			Bucket:          cfg.Storage.MinIO.Bucket,
			Region:          cfg.Storage.MinIO.Region,
		})
	default:
		return nil, errors.FromCodef(errors.ErrSysConfigurationError,
			"unknown storage backend %q", cfg.Storage.Backend)
	}
}
