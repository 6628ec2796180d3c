package reward

import (
	"context"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/internal/platform/sampling"
)

// Evaluator scores a reward model against a freshly sampled, never persisted
// preference corpus. Both the predicted and the ground-truth preferences are
// drawn as Bernoulli outcomes, so accuracy is stochastic around the model's
// true agreement rate.
type Evaluator struct {
	builder *sampling.PreferenceCorpusBuilder
	rng     *rand.Rand
	logger  logging.Logger
}

// NewEvaluator wires an evaluator over its own ephemeral corpus builder.
func NewEvaluator(sampler *sampling.TrajectorySampler, rng *rand.Rand, logger logging.Logger, tracer trace.Tracer) *Evaluator {
	return &Evaluator{
		builder: sampling.NewPreferenceCorpusBuilder(sampler, nil, logger, nil, tracer),
		rng:     rng,
		logger:  logger,
	}
}

// Evaluate samples numPairs fresh pairs of length lenT, predicts a preference
// per pair from the model's segment reward sums, and returns the fraction of
// pairs whose sampled prediction matches the sampled ground truth.
func (e *Evaluator) Evaluate(ctx context.Context, ds *dataset.TransitionDataset, model *LatentRewardModel, numPairs, lenT int) (float64, error) {
	corpus, err := e.builder.Build(ctx, ds, numPairs, lenT, "")
	if err != nil {
		return 0, err
	}

	indices := make([]int, 0, 2*numPairs*lenT)
	for i := 0; i < numPairs; i++ {
		indices = append(indices, corpus.FirstIndices[i]...)
		indices = append(indices, corpus.SecondIndices[i]...)
	}
	rewards, err := model.Predict(ds, indices)
	if err != nil {
		return 0, err
	}

	agree := 0
	for i := 0; i < numPairs; i++ {
		base := i * 2 * lenT
		var sumFirst, sumSecond float64
		for t := 0; t < lenT; t++ {
			sumFirst += rewards[base+t]
			sumSecond += rewards[base+lenT+t]
		}
		pFirst := 1.0 / (1.0 + math.Exp(sumSecond-sumFirst))

		predicted := distuv.Bernoulli{P: pFirst, Src: e.rng}.Rand()
		actual := distuv.Bernoulli{P: corpus.Preferences[i], Src: e.rng}.Rand()
		if predicted == actual {
			agree++
		}
	}
	return float64(agree) / float64(numPairs), nil
}
