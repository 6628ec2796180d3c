package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/internal/app/dto"
	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage/filesystem"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/types"
)

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Storage.Filesystem.Root = root
	cfg.PbRL.Hyperparameters = types.Hyperparameters{
		NumPairs:      16,
		TrajectoryLen: 4,
		Epochs:        60,
		Patience:      5,
		LearningRate:  0.001,
		HiddenDim:     8,
		Seed:          7,
	}
	cfg.PbRL.EvalPairs = 32
	cfg.PbRL.CheckpointEvery = 50
	return cfg
}

func newTestService(t *testing.T) (*RelabelService, storage.ArtifactStore) {
	t.Helper()
	root := t.TempDir()
	store, err := filesystem.NewStore(root)
	require.NoError(t, err)
	svc := NewRelabelService(testConfig(root), store, nil, nil, nil,
		logging.NewNop(), nil, trace.NewNop())
	return svc, store
}

func seedDataset(t *testing.T, svc *RelabelService, key string, n int) {
	t.Helper()
	ds := &dataset.TransitionDataset{
		Observations:     make([][]float64, n),
		Actions:          make([][]float64, n),
		NextObservations: make([][]float64, n),
		Rewards:          make([]float64, n),
		Terminals:        make([]bool, n),
	}
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n)
		ds.Observations[i] = []float64{x, 1 - x}
		ds.Actions[i] = []float64{0.5 * x}
		ds.NextObservations[i] = []float64{x, 1 - x}
		ds.Rewards[i] = x
	}
	data, err := dataset.Encode(ds)
	require.NoError(t, err)
	require.NoError(t, svc.UploadDataset(context.Background(), key, data))
}

func TestRunSync(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	seedDataset(t, svc, "datasets/walker.json", 300)

	resp, err := svc.RunSync(ctx, &dto.RelabelRequest{DatasetKey: "datasets/walker.json"})
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, resp.Status)
	require.NotNil(t, resp.Accuracy)
	assert.GreaterOrEqual(t, *resp.Accuracy, 0.0)
	assert.LessOrEqual(t, *resp.Accuracy, 1.0)

	t.Run("output artifact holds relabeled transitions", func(t *testing.T) {
		data, err := store.Get(ctx, resp.OutputKey)
		require.NoError(t, err)
		out, err := dataset.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, 2*16*4, out.Len())
		for _, r := range out.Rewards {
			assert.Greater(t, r, -1.0)
			assert.Less(t, r, 1.0)
		}
	})

	t.Run("corpus and checkpoint are cached", func(t *testing.T) {
		ok, err := store.Exists(ctx, resp.CorpusKey)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = store.Exists(ctx, resp.CheckpointKey)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("run is queryable afterwards", func(t *testing.T) {
		got, err := svc.GetRun(ctx, resp.RunID)
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusCompleted, got.Status)

		runs, err := svc.ListRuns(ctx, 10, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, runs)
	})

	t.Run("second run reuses artifacts and completes", func(t *testing.T) {
		again, err := svc.RunSync(ctx, &dto.RelabelRequest{DatasetKey: "datasets/walker.json"})
		require.NoError(t, err)
		assert.Equal(t, types.RunStatusCompleted, again.Status)
		assert.Equal(t, resp.CorpusKey, again.CorpusKey)
	})
}

func TestRunSyncFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	resp, err := svc.RunSync(ctx, &dto.RelabelRequest{DatasetKey: "datasets/missing.json"})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, types.RunStatusFailed, resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestRunSyncValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RunSync(context.Background(), &dto.RelabelRequest{})
	assert.Error(t, err, "dataset key is required")
}

func TestGetRunUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestDatasetStats(t *testing.T) {
	svc, _ := newTestService(t)
	seedDataset(t, svc, "datasets/stats.json", 50)

	stats, err := svc.DatasetStats(context.Background(), "datasets/stats.json")
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Stats.Transitions)
	assert.Equal(t, 2, stats.Stats.ObservationDim)
	assert.Equal(t, 1, stats.Stats.ActionDim)
}

func TestHyperparameterOverrides(t *testing.T) {
	defaults := config.Default().PbRL.Hyperparameters
	req := &dto.RelabelRequest{NumPairs: 5, LearningRate: 0.01}
	hp := req.Hyperparameters(defaults)
	assert.Equal(t, 5, hp.NumPairs)
	assert.Equal(t, 0.01, hp.LearningRate)
	assert.Equal(t, defaults.TrajectoryLen, hp.TrajectoryLen)
	assert.Equal(t, defaults.Epochs, hp.Epochs)
}
