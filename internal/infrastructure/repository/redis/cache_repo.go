// Package redis implements the run status cache backed by Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/openpbrl/openpbrl/internal/domain/run"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

const defaultKeyPrefix = "openpbrl"

// CacheRepository caches run records for cheap status polling
type CacheRepository interface {
	SaveRun(ctx context.Context, r *run.Run) error
	GetRun(ctx context.Context, id string) (*run.Run, error)
	DeleteRun(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

type cacheRepository struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewCacheRepository connects to Redis and verifies the connection.
func NewCacheRepository(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (CacheRepository, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrRunStoreUnavailable.Code, "connect redis")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &cacheRepository{client: client, prefix: prefix, ttl: ttl, logger: logger}, nil
}

func (c *cacheRepository) runKey(id string) string {
	return fmt.Sprintf("%s:run:%s", c.prefix, id)
}

func (c *cacheRepository) SaveRun(ctx context.Context, r *run.Run) error {
	data, err := utils.ToJSONBytes(r)
	if err != nil {
		return errors.Wrap(err, errors.ErrRunPersistFailed.Code, "encode run record")
	}
	if err := c.client.Set(ctx, c.runKey(r.ID), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrRunPersistFailed.Code, "cache run record")
	}
	return nil
}

func (c *cacheRepository) GetRun(ctx context.Context, id string) (*run.Run, error) {
	data, err := c.client.Get(ctx, c.runKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, errors.FromCodef(errors.ErrRunNotFound, "run %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRunPersistFailed.Code, "read cached run")
	}
	var r run.Run
	if err := utils.FromJSONBytes(data, &r); err != nil {
		return nil, errors.Wrap(err, errors.ErrArtifactDecodeFailed.Code, "decode cached run")
	}
	return &r, nil
}

func (c *cacheRepository) DeleteRun(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.runKey(id)).Err()
}

func (c *cacheRepository) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *cacheRepository) Close() error {
	return c.client.Close()
}
