package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/pkg/errors"
)

func makeDataset(n int) *TransitionDataset {
	ds := &TransitionDataset{
		Observations:     make([][]float64, n),
		Actions:          make([][]float64, n),
		NextObservations: make([][]float64, n),
		Rewards:          make([]float64, n),
		Terminals:        make([]bool, n),
	}
	for i := 0; i < n; i++ {
		ds.Observations[i] = []float64{float64(i), float64(i) * 2}
		ds.Actions[i] = []float64{float64(i) * 0.1}
		ds.NextObservations[i] = []float64{float64(i + 1), float64(i+1) * 2}
		ds.Rewards[i] = float64(i)
	}
	return ds
}

func TestValidate(t *testing.T) {
	t.Run("aligned dataset passes", func(t *testing.T) {
		assert.NoError(t, makeDataset(5).Validate())
	})

	t.Run("misaligned fields fail", func(t *testing.T) {
		ds := makeDataset(5)
		ds.Actions = ds.Actions[:4]
		err := ds.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDimensionMismatch))
	})
}

func TestFeatureRow(t *testing.T) {
	ds := makeDataset(3)
	assert.Equal(t, []float64{1, 2, 0.1}, ds.FeatureRow(1))
	assert.Equal(t, 3, ds.FeatureDim())
}

func TestSubset(t *testing.T) {
	ds := makeDataset(10)

	t.Run("keeps fields aligned and ordered", func(t *testing.T) {
		sub, err := ds.Subset([]int{7, 2, 2})
		require.NoError(t, err)
		assert.Equal(t, 3, sub.Len())
		assert.Equal(t, []float64{7, 2, 2}, sub.Rewards)
		assert.Equal(t, []float64{7, 14}, sub.Observations[0])
		assert.Equal(t, []float64{2, 4}, sub.Observations[1])
	})

	t.Run("rejects out-of-range index", func(t *testing.T) {
		_, err := ds.Subset([]int{0, 10})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrIndexOutOfRange))
	})

	t.Run("rejects negative index", func(t *testing.T) {
		_, err := ds.Subset([]int{-1})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrIndexOutOfRange))
	})
}

func TestWithRewards(t *testing.T) {
	ds := makeDataset(3)

	out, err := ds.WithRewards([]float64{9, 8, 7})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 8, 7}, out.Rewards)
	assert.Equal(t, []float64{0, 1, 2}, ds.Rewards, "source must stay untouched")

	_, err = ds.WithRewards([]float64{1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDimensionMismatch))
}

func TestScaleRewards(t *testing.T) {
	t.Run("maps range onto [-1, 1]", func(t *testing.T) {
		ds := makeDataset(5)
		out, err := ds.ScaleRewards()
		require.NoError(t, err)
		assert.InDelta(t, -1, out.Rewards[0], 1e-12)
		assert.InDelta(t, 0, out.Rewards[2], 1e-12)
		assert.InDelta(t, 1, out.Rewards[4], 1e-12)
	})

	t.Run("rejects constant rewards", func(t *testing.T) {
		ds := makeDataset(4)
		ds.Rewards = []float64{3, 3, 3, 3}
		_, err := ds.ScaleRewards()
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDegenerateRewardRange))
	})
}

func TestSumRewards(t *testing.T) {
	ds := makeDataset(10)
	assert.Equal(t, float64(2+3+4), ds.SumRewards(2, 3))
}

func TestComputeStats(t *testing.T) {
	ds := makeDataset(4)
	ds.Terminals[3] = true
	s := ds.ComputeStats()
	assert.Equal(t, 4, s.Transitions)
	assert.Equal(t, 1, s.Terminals)
	assert.Equal(t, float64(0), s.RewardMin)
	assert.Equal(t, float64(3), s.RewardMax)
	assert.InDelta(t, 1.5, s.RewardMean, 1e-12)
	assert.Equal(t, 2, s.ObservationDim)
	assert.Equal(t, 1, s.ActionDim)
}

func TestCodecRoundTrip(t *testing.T) {
	ds := makeDataset(3)
	data, err := Encode(ds)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ds.Rewards, out.Rewards)
	assert.Equal(t, ds.Observations, out.Observations)

	_, err = Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestEncodeUnserializable(t *testing.T) {
	ds := makeDataset(3)
	ds.Rewards[1] = math.NaN()

	_, err := Encode(ds)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrArtifactPutFailed))
}
