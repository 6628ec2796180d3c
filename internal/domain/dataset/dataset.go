// Package dataset defines the offline transition dataset domain type.
// A dataset is a set of parallel, index-aligned sequences; every operation
// returns a new value and never mutates its receiver.
package dataset

import (
	"gonum.org/v1/gonum/floats"

	"github.com/openpbrl/openpbrl/pkg/errors"
)

// TransitionDataset holds N aligned transitions from an offline RL dataset.
// Index i refers to the same transition across all five fields.
type TransitionDataset struct {
	Observations     [][]float64 `json:"observations"`
	Actions          [][]float64 `json:"actions"`
	NextObservations [][]float64 `json:"next_observations"`
	Rewards          []float64   `json:"rewards"`
	Terminals        []bool      `json:"terminals"`
}

// Len returns the number of transitions
func (d *TransitionDataset) Len() int {
	return len(d.Rewards)
}

// ObsDim returns the observation width, 0 for an empty dataset
func (d *TransitionDataset) ObsDim() int {
	if len(d.Observations) == 0 {
		return 0
	}
	return len(d.Observations[0])
}

// ActDim returns the action width, 0 for an empty dataset
func (d *TransitionDataset) ActDim() int {
	if len(d.Actions) == 0 {
		return 0
	}
	return len(d.Actions[0])
}

// FeatureDim returns the concatenated observation+action width
func (d *TransitionDataset) FeatureDim() int {
	return d.ObsDim() + d.ActDim()
}

// Validate checks that all five fields share the same length
func (d *TransitionDataset) Validate() error {
	n := d.Len()
	if len(d.Observations) != n || len(d.Actions) != n ||
		len(d.NextObservations) != n || len(d.Terminals) != n {
		return errors.FromCodef(errors.ErrDimensionMismatch,
			"dataset fields misaligned: obs=%d act=%d next=%d rew=%d term=%d",
			len(d.Observations), len(d.Actions), len(d.NextObservations),
			len(d.Rewards), len(d.Terminals))
	}
	return nil
}

// FeatureRow returns observation i concatenated with action i
func (d *TransitionDataset) FeatureRow(i int) []float64 {
	obs := d.Observations[i]
	act := d.Actions[i]
	row := make([]float64, 0, len(obs)+len(act))
	row = append(row, obs...)
	row = append(row, act...)
	return row
}

// Subset returns a new dataset holding the transitions at indices, in order.
// All five fields are subset together so the result stays index-aligned.
func (d *TransitionDataset) Subset(indices []int) (*TransitionDataset, error) {
	n := d.Len()
	out := &TransitionDataset{
		Observations:     make([][]float64, len(indices)),
		Actions:          make([][]float64, len(indices)),
		NextObservations: make([][]float64, len(indices)),
		Rewards:          make([]float64, len(indices)),
		Terminals:        make([]bool, len(indices)),
	}
	for j, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.FromCodef(errors.ErrIndexOutOfRange, "index %d, dataset size %d", idx, n)
		}
		out.Observations[j] = d.Observations[idx]
		out.Actions[j] = d.Actions[idx]
		out.NextObservations[j] = d.NextObservations[idx]
		out.Rewards[j] = d.Rewards[idx]
		out.Terminals[j] = d.Terminals[idx]
	}
	return out, nil
}

// WithRewards returns a copy of the dataset with the reward field replaced
func (d *TransitionDataset) WithRewards(rewards []float64) (*TransitionDataset, error) {
	if len(rewards) != d.Len() {
		return nil, errors.FromCodef(errors.ErrDimensionMismatch,
			"reward length %d, dataset size %d", len(rewards), d.Len())
	}
	return &TransitionDataset{
		Observations:     d.Observations,
		Actions:          d.Actions,
		NextObservations: d.NextObservations,
		Rewards:          rewards,
		Terminals:        d.Terminals,
	}, nil
}

// ScaleRewards min-max normalizes rewards into [-1, 1].
// A constant reward field would divide by zero, so it is rejected outright.
func (d *TransitionDataset) ScaleRewards() (*TransitionDataset, error) {
	if d.Len() == 0 {
		return nil, errors.FromCodef(errors.ErrDegenerateRewardRange, "dataset is empty")
	}
	lo := floats.Min(d.Rewards)
	hi := floats.Max(d.Rewards)
	if hi == lo {
		return nil, errors.FromCodef(errors.ErrDegenerateRewardRange, "all rewards equal %g", lo)
	}

	scaled := make([]float64, d.Len())
	span := hi - lo
	for i, r := range d.Rewards {
		scaled[i] = -1 + 2*(r-lo)/span
	}
	return d.WithRewards(scaled)
}

// SumRewards returns the total reward over the index window [start, start+length)
func (d *TransitionDataset) SumRewards(start, length int) float64 {
	return floats.Sum(d.Rewards[start : start+length])
}

// Stats summarizes the dataset for diagnostics
type Stats struct {
	Transitions    int     `json:"transitions"`
	Terminals      int     `json:"terminals"`
	RewardMin      float64 `json:"reward_min"`
	RewardMax      float64 `json:"reward_max"`
	RewardMean     float64 `json:"reward_mean"`
	ObservationDim int     `json:"observation_dim"`
	ActionDim      int     `json:"action_dim"`
}

// ComputeStats returns summary statistics for logging and CLI output
func (d *TransitionDataset) ComputeStats() Stats {
	s := Stats{
		Transitions:    d.Len(),
		ObservationDim: d.ObsDim(),
		ActionDim:      d.ActDim(),
	}
	for _, t := range d.Terminals {
		if t {
			s.Terminals++
		}
	}
	if d.Len() > 0 {
		s.RewardMin = floats.Min(d.Rewards)
		s.RewardMax = floats.Max(d.Rewards)
		s.RewardMean = floats.Sum(d.Rewards) / float64(d.Len())
	}
	return s
}
