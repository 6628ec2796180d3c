//go:build integration

package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/openpbrl/openpbrl/internal/domain/run"
	redisrepo "github.com/openpbrl/openpbrl/internal/infrastructure/repository/redis"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/types"
)

type RedisCacheSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	repo      redisrepo.CacheRepository
	ctx       context.Context
}

func (s *RedisCacheSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcredis.Run(s.ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	repo, err := redisrepo.NewCacheRepository(s.ctx, config.RedisConfig{
		Enabled:    true,
		Addr:       strings.TrimPrefix(uri, "redis://"),
		KeyPrefix:  "openpbrl-test",
		DefaultTTL: time.Minute,
	}, logging.NewNop())
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.repo != nil {
		s.Require().NoError(s.repo.Close())
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *RedisCacheSuite) TestSaveAndGetRun() {
	rec := &run.Run{
		ID:         "11111111-1111-1111-1111-111111111111",
		Status:     types.RunStatusRunning,
		DatasetKey: "datasets/walker.json",
		NumPairs:   100,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		UpdatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.repo.SaveRun(s.ctx, rec))

	got, err := s.repo.GetRun(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Equal(types.RunStatusRunning, got.Status)
	s.Equal(rec.DatasetKey, got.DatasetKey)
	s.Equal(rec.NumPairs, got.NumPairs)
}

func (s *RedisCacheSuite) TestGetMissingRun() {
	_, err := s.repo.GetRun(s.ctx, "missing-run")
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrRunNotFound))
}

func (s *RedisCacheSuite) TestDeleteRun() {
	rec := &run.Run{ID: "22222222-2222-2222-2222-222222222222", Status: types.RunStatusCompleted}
	s.Require().NoError(s.repo.SaveRun(s.ctx, rec))
	s.Require().NoError(s.repo.DeleteRun(s.ctx, rec.ID))

	_, err := s.repo.GetRun(s.ctx, rec.ID)
	s.True(errors.IsCode(err, errors.ErrRunNotFound))
}

func (s *RedisCacheSuite) TestStatusOverwrite() {
	rec := &run.Run{ID: "33333333-3333-3333-3333-333333333333", Status: types.RunStatusPending}
	s.Require().NoError(s.repo.SaveRun(s.ctx, rec))

	rec.Status = types.RunStatusCompleted
	s.Require().NoError(s.repo.SaveRun(s.ctx, rec))

	got, err := s.repo.GetRun(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(types.RunStatusCompleted, got.Status)
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}
