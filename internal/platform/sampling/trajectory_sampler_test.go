package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

func makeDataset(n int, terminals ...int) *dataset.TransitionDataset {
	ds := &dataset.TransitionDataset{
		Observations:     make([][]float64, n),
		Actions:          make([][]float64, n),
		NextObservations: make([][]float64, n),
		Rewards:          make([]float64, n),
		Terminals:        make([]bool, n),
	}
	for i := 0; i < n; i++ {
		ds.Observations[i] = []float64{float64(i)}
		ds.Actions[i] = []float64{float64(i) * 0.5}
		ds.NextObservations[i] = []float64{float64(i + 1)}
		ds.Rewards[i] = float64(i)
	}
	for _, idx := range terminals {
		ds.Terminals[idx] = true
	}
	return ds
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestSample(t *testing.T) {
	t.Run("returns contiguous window with summed reward", func(t *testing.T) {
		ds := makeDataset(100)
		s := NewTrajectorySampler(newRNG(1), 0, nil)

		indices, total, err := s.Sample(ds, 5)
		require.NoError(t, err)
		require.Len(t, indices, 5)
		for i := 1; i < len(indices); i++ {
			assert.Equal(t, indices[i-1]+1, indices[i])
		}
		assert.Equal(t, ds.SumRewards(indices[0], 5), total)
	})

	t.Run("never includes a terminal", func(t *testing.T) {
		ds := makeDataset(60, 10, 25, 40)
		s := NewTrajectorySampler(newRNG(2), 0, nil)

		for i := 0; i < 200; i++ {
			indices, _, err := s.Sample(ds, 8)
			require.NoError(t, err)
			for _, idx := range indices {
				assert.False(t, ds.Terminals[idx], "terminal at %d leaked into window", idx)
			}
		}
	})

	t.Run("rejects invalid window length", func(t *testing.T) {
		ds := makeDataset(10)
		s := NewTrajectorySampler(newRNG(3), 0, nil)

		for _, lenT := range []int{0, -1, 10, 11} {
			_, _, err := s.Sample(ds, lenT)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrInvalidTrajectoryLength))
		}
	})

	t.Run("exhausts retries on terminal-dense data", func(t *testing.T) {
		ds := makeDataset(20)
		for i := range ds.Terminals {
			ds.Terminals[i] = i%2 == 0
		}
		s := NewTrajectorySampler(newRNG(4), 50, nil)

		_, _, err := s.Sample(ds, 5)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrSamplingExhausted))
	})
}
