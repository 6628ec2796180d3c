package sampling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/internal/infrastructure/storage/filesystem"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

func newBuilder(t *testing.T, withStore bool, seed uint64) *PreferenceCorpusBuilder {
	t.Helper()
	sampler := NewTrajectorySampler(newRNG(seed), 0, nil)
	var err error
	builder := NewPreferenceCorpusBuilder(sampler, nil, logging.NewNop(), nil, trace.NewNop())
	if withStore {
		store, serr := filesystem.NewStore(t.TempDir())
		err = serr
		builder = NewPreferenceCorpusBuilder(sampler, store, logging.NewNop(), nil, trace.NewNop())
	}
	require.NoError(t, err)
	return builder
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("produces aligned corpus", func(t *testing.T) {
		ds := makeDataset(200)
		corpus, err := newBuilder(t, false, 1).Build(ctx, ds, 50, 6, "")
		require.NoError(t, err)

		assert.Equal(t, 50, corpus.NumPairs())
		assert.Equal(t, 6, corpus.TrajectoryLen)
		require.NoError(t, corpus.Validate())
		for i := 0; i < corpus.NumPairs(); i++ {
			assert.GreaterOrEqual(t, corpus.Preferences[i], 0.0)
			assert.LessOrEqual(t, corpus.Preferences[i], 1.0)
		}
	})

	t.Run("preference follows the reward gap", func(t *testing.T) {
		ds := makeDataset(200)
		corpus, err := newBuilder(t, false, 2).Build(ctx, ds, 100, 5, "")
		require.NoError(t, err)

		for i := 0; i < corpus.NumPairs(); i++ {
			r1 := ds.SumRewards(corpus.FirstIndices[i][0], 5)
			r2 := ds.SumRewards(corpus.SecondIndices[i][0], 5)
			p := corpus.Preferences[i]
			switch {
			case r1 > r2:
				assert.Greater(t, p, 0.5)
			case r1 < r2:
				assert.Less(t, p, 0.5)
			default:
				assert.InDelta(t, 0.5, p, 1e-12)
			}
		}
	})

	t.Run("large reward gaps stay finite", func(t *testing.T) {
		ds := makeDataset(200)
		for i := range ds.Rewards {
			ds.Rewards[i] = float64(i) * 1000
		}
		corpus, err := newBuilder(t, false, 3).Build(ctx, ds, 50, 4, "")
		require.NoError(t, err)
		for _, p := range corpus.Preferences {
			assert.False(t, p != p, "preference must not be NaN")
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
	})

	t.Run("second build hits the cache", func(t *testing.T) {
		ds := makeDataset(200)
		builder := newBuilder(t, true, 4)

		first, err := builder.Build(ctx, ds, 20, 5, "corpora/test.json")
		require.NoError(t, err)
		second, err := builder.Build(ctx, ds, 20, 5, "corpora/test.json")
		require.NoError(t, err)

		assert.Equal(t, first.FirstIndices, second.FirstIndices)
		assert.Equal(t, first.SecondIndices, second.SecondIndices)
		assert.Equal(t, first.Preferences, second.Preferences)
	})

	t.Run("rejects empty request", func(t *testing.T) {
		ds := makeDataset(50)
		_, err := newBuilder(t, false, 5).Build(ctx, ds, 0, 5, "")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrEmptyCorpus))
	})
}

func TestDecodeCorpus(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		corpus := &PairCorpus{
			TrajectoryLen: 2,
			FirstIndices:  [][]int{{0, 1}},
			SecondIndices: [][]int{{3, 4}},
			Preferences:   []float64{0.75},
		}
		data, err := EncodeCorpus(corpus)
		require.NoError(t, err)
		out, err := DecodeCorpus(data)
		require.NoError(t, err)
		assert.Equal(t, corpus, out)
	})

	t.Run("rejects inconsistent payload", func(t *testing.T) {
		corpus := &PairCorpus{
			TrajectoryLen: 3,
			FirstIndices:  [][]int{{0, 1}},
			SecondIndices: [][]int{{3, 4}},
			Preferences:   []float64{0.75},
		}
		data, err := EncodeCorpus(corpus)
		require.NoError(t, err)
		_, err = DecodeCorpus(data)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDimensionMismatch))
	})
}
