package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

func makeDataset(n int) *dataset.TransitionDataset {
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
		ds.Actions[i] = []float64{x * 0.5}
		ds.NextObservations[i] = []float64{x, 1 - x}
		ds.Rewards[i] = x
	}
	return ds
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestNewLatentRewardModel(t *testing.T) {
	t.Run("rejects invalid dimensions", func(t *testing.T) {
		_, err := NewLatentRewardModel(0, 8, newRNG(1))
		assert.Error(t, err)
		_, err = NewLatentRewardModel(3, 0, newRNG(1))
		assert.Error(t, err)
	})

	t.Run("reports dimensions", func(t *testing.T) {
		m, err := NewLatentRewardModel(3, 16, newRNG(1))
		require.NoError(t, err)
		assert.Equal(t, 3, m.InputDim())
		assert.Equal(t, 16, m.HiddenDim())
	})
}

func TestForward(t *testing.T) {
	ds := makeDataset(50)
	m, err := NewLatentRewardModel(ds.FeatureDim(), 16, newRNG(7))
	require.NoError(t, err)

	features, err := FeatureMatrix(ds)
	require.NoError(t, err)

	t.Run("outputs stay inside (-1, 1)", func(t *testing.T) {
		out, err := m.Forward(features)
		require.NoError(t, err)
		require.Len(t, out, 50)
		for _, r := range out {
			assert.Greater(t, r, -1.0)
			assert.Less(t, r, 1.0)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		a, err := m.Forward(features)
		require.NoError(t, err)
		b, err := m.Forward(features)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("rejects width mismatch", func(t *testing.T) {
		other := makeDataset(10)
		other.Actions = make([][]float64, 10)
		for i := range other.Actions {
			other.Actions[i] = []float64{0, 0}
		}
		wide, err := FeatureMatrix(other)
		require.NoError(t, err)
		_, err = m.Forward(wide)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrDimensionMismatch))
	})
}

func TestPredict(t *testing.T) {
	ds := makeDataset(40)
	m, err := NewLatentRewardModel(ds.FeatureDim(), 8, newRNG(3))
	require.NoError(t, err)

	out, err := m.Predict(ds, []int{5, 1, 5})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, out[0], out[2], "same transition must score identically")

	_, err = m.Predict(ds, []int{40})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrIndexOutOfRange))
}

func TestCheckpointRoundTrip(t *testing.T) {
	ds := makeDataset(30)
	m, err := NewLatentRewardModel(ds.FeatureDim(), 8, newRNG(11))
	require.NoError(t, err)

	data, err := EncodeCheckpoint(m.Snapshot(42))
	require.NoError(t, err)
	checkpoint, err := DecodeCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, 42, checkpoint.Epoch)

	restored, err := FromCheckpoint(checkpoint)
	require.NoError(t, err)

	features, err := FeatureMatrix(ds)
	require.NoError(t, err)
	want, err := m.Forward(features)
	require.NoError(t, err)
	got, err := restored.Forward(features)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromCheckpointRejectsCorrupt(t *testing.T) {
	m, err := NewLatentRewardModel(3, 8, newRNG(1))
	require.NoError(t, err)
	c := m.Snapshot(0)
	c.Weights[0] = c.Weights[0][:4]

	_, err = FromCheckpoint(c)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDimensionMismatch))
}

func TestFeatureMatrix(t *testing.T) {
	ds := makeDataset(6)
	features, err := FeatureMatrix(ds)
	require.NoError(t, err)
	rows, cols := features.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, ds.FeatureDim(), cols)
	assert.Equal(t, ds.FeatureRow(2), []float64{features.At(2, 0), features.At(2, 1), features.At(2, 2)})
}
