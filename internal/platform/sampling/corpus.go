package sampling

import (
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

// PairCorpus holds numPairs sampled trajectory pairs. FirstIndices[i] and
// SecondIndices[i] are the contiguous transition indices of the i-th pair's
// two windows, each of length TrajectoryLen. Preferences[i] is the
// Bradley-Terry probability that the first window is preferred.
type PairCorpus struct {
	TrajectoryLen int       `json:"trajectory_len"`
	FirstIndices  [][]int   `json:"first_indices"`
	SecondIndices [][]int   `json:"second_indices"`
	Preferences   []float64 `json:"preferences"`
}

// NumPairs returns the number of trajectory pairs in the corpus.
func (c *PairCorpus) NumPairs() int {
	return len(c.Preferences)
}

// Validate checks internal consistency of the corpus.
func (c *PairCorpus) Validate() error {
	if c.NumPairs() == 0 {
		return errors.FromCode(errors.ErrEmptyCorpus)
	}
	if len(c.FirstIndices) != c.NumPairs() || len(c.SecondIndices) != c.NumPairs() {
		return errors.FromCodef(errors.ErrDimensionMismatch,
			"corpus columns disagree: first=%d second=%d preferences=%d",
			len(c.FirstIndices), len(c.SecondIndices), c.NumPairs())
	}
	for i := 0; i < c.NumPairs(); i++ {
		if len(c.FirstIndices[i]) != c.TrajectoryLen || len(c.SecondIndices[i]) != c.TrajectoryLen {
			return errors.FromCodef(errors.ErrDimensionMismatch,
				"pair %d window lengths (%d, %d) differ from trajectory_len %d",
				i, len(c.FirstIndices[i]), len(c.SecondIndices[i]), c.TrajectoryLen)
		}
		if p := c.Preferences[i]; p < 0 || p > 1 {
			return errors.FromCodef(errors.ErrDimensionMismatch,
				"pair %d preference %f outside [0, 1]", i, p)
		}
	}
	return nil
}

// EncodeCorpus serializes a corpus for artifact storage.
func EncodeCorpus(c *PairCorpus) ([]byte, error) {
	return utils.ToJSONBytes(c)
}

// DecodeCorpus deserializes and validates a stored corpus.
func DecodeCorpus(data []byte) (*PairCorpus, error) {
	var c PairCorpus
	if err := utils.FromJSONBytes(data, &c); err != nil {
		return nil, errors.Wrap(err, errors.ErrArtifactDecodeFailed.Code, "decode pair corpus")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
