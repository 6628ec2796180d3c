package reward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

func TestRelabel(t *testing.T) {
	ctx := context.Background()
	ds := makeDataset(60)
	model, err := NewLatentRewardModel(ds.FeatureDim(), 8, newRNG(13))
	require.NoError(t, err)
	pipeline := NewRelabelingPipeline(logging.NewNop(), nil, trace.NewNop())

	t.Run("replaces rewards with model predictions", func(t *testing.T) {
		indices := []int{3, 17, 42, 3}
		out, err := pipeline.Relabel(ctx, ds, model, indices)
		require.NoError(t, err)
		require.Equal(t, len(indices), out.Len())

		want, err := model.Predict(ds, indices)
		require.NoError(t, err)
		assert.Equal(t, want, out.Rewards)
		assert.Equal(t, out.Rewards[0], out.Rewards[3], "duplicate index gets duplicate reward")

		for row, idx := range indices {
			assert.Equal(t, ds.Observations[idx], out.Observations[row])
			assert.Equal(t, ds.Terminals[idx], out.Terminals[row])
		}
	})

	t.Run("leaves the source dataset untouched", func(t *testing.T) {
		before := append([]float64{}, ds.Rewards...)
		_, err := pipeline.Relabel(ctx, ds, model, []int{0, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, before, ds.Rewards)
	})

	t.Run("is idempotent", func(t *testing.T) {
		a, err := pipeline.Relabel(ctx, ds, model, []int{5, 6, 7})
		require.NoError(t, err)
		b, err := pipeline.Relabel(ctx, ds, model, []int{5, 6, 7})
		require.NoError(t, err)
		assert.Equal(t, a.Rewards, b.Rewards)
	})

	t.Run("rejects bad indices", func(t *testing.T) {
		_, err := pipeline.Relabel(ctx, ds, model, []int{60})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrIndexOutOfRange))
	})
}
