package reward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/internal/platform/sampling"
)

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	ds := makeDataset(300)
	sampler := sampling.NewTrajectorySampler(newRNG(31), 0, nil)
	evaluator := NewEvaluator(sampler, newRNG(32), logging.NewNop(), trace.NewNop())

	model, err := NewLatentRewardModel(ds.FeatureDim(), 8, newRNG(33))
	require.NoError(t, err)

	t.Run("accuracy is a valid fraction", func(t *testing.T) {
		accuracy, err := evaluator.Evaluate(ctx, ds, model, 100, 5)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, accuracy, 0.0)
		assert.LessOrEqual(t, accuracy, 1.0)
	})

	t.Run("does not mutate the model", func(t *testing.T) {
		features, err := FeatureMatrix(ds)
		require.NoError(t, err)
		before, err := model.Forward(features)
		require.NoError(t, err)

		_, err = evaluator.Evaluate(ctx, ds, model, 50, 5)
		require.NoError(t, err)

		after, err := model.Forward(features)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("propagates sampling failures", func(t *testing.T) {
		dense := makeDataset(40)
		for i := range dense.Terminals {
			dense.Terminals[i] = true
		}
		bounded := sampling.NewTrajectorySampler(newRNG(34), 10, nil)
		ev := NewEvaluator(bounded, newRNG(35), logging.NewNop(), trace.NewNop())
		_, err := ev.Evaluate(ctx, dense, model, 10, 5)
		assert.Error(t, err)
	})
}
