package sampling

import (
	"context"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// LabeledBatch is the output of preference labeling: a transition subset of
// size 2*numPairs*trajectoryLen whose rewards carry the signed labels, plus
// the flattened transition indices the rows were drawn from. Rows are laid
// out as all first-window rows followed by all second-window rows, each
// group pair-major.
type LabeledBatch struct {
	Dataset *dataset.TransitionDataset
	Indices []int
	Labels  []float64
}

// PreferenceLabeler converts a preference corpus into hard ±1 labels by
// bootstrap-resampling pairs and drawing Bernoulli outcomes from the
// Bradley-Terry probabilities.
type PreferenceLabeler struct {
	rng    *rand.Rand
	logger logging.Logger
}

// NewPreferenceLabeler creates a labeler over the given RNG.
func NewPreferenceLabeler(rng *rand.Rand, logger logging.Logger) *PreferenceLabeler {
	return &PreferenceLabeler{rng: rng, logger: logger}
}

// Label resamples numPairs pairs from the corpus with replacement, draws one
// Bernoulli outcome per pair, and assigns +label to every transition of the
// first window and -label to every transition of the second, where label is
// +1 when the first window wins and -1 otherwise.
func (l *PreferenceLabeler) Label(ctx context.Context, ds *dataset.TransitionDataset, corpus *PairCorpus, numPairs int) (*LabeledBatch, error) {
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	if numPairs <= 0 {
		return nil, errors.FromCodef(errors.ErrEmptyCorpus, "num_pairs=%d", numPairs)
	}

	lenT := corpus.TrajectoryLen
	firstIndices := make([]int, 0, numPairs*lenT)
	secondIndices := make([]int, 0, numPairs*lenT)
	labels := make([]float64, 0, numPairs)

	for i := 0; i < numPairs; i++ {
		pair := l.rng.Intn(corpus.NumPairs())
		outcome := distuv.Bernoulli{P: corpus.Preferences[pair], Src: l.rng}.Rand()
		label := 2*outcome - 1 // {0,1} -> {-1,+1}

		firstIndices = append(firstIndices, corpus.FirstIndices[pair]...)
		secondIndices = append(secondIndices, corpus.SecondIndices[pair]...)
		labels = append(labels, label)
	}

	// Signed labels repeat across every transition of their window.
	rewards := make([]float64, 0, 2*numPairs*lenT)
	for _, label := range labels {
		for t := 0; t < lenT; t++ {
			rewards = append(rewards, label)
		}
	}
	for _, label := range labels {
		for t := 0; t < lenT; t++ {
			rewards = append(rewards, -label)
		}
	}

	indices := append(append([]int{}, firstIndices...), secondIndices...)
	subset, err := ds.Subset(indices)
	if err != nil {
		return nil, err
	}
	subset, err = subset.WithRewards(rewards)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("preference labels drawn",
		logging.Int("num_pairs", numPairs),
		logging.Int("rows", subset.Len()))
	return &LabeledBatch{Dataset: subset, Indices: indices, Labels: labels}, nil
}
