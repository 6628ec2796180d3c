// Package sampling implements trajectory-pair sampling and preference
// synthesis over offline transition datasets: terminal-free window sampling,
// Bradley-Terry preference corpus generation, and signed preference labeling.
package sampling

import (
	"golang.org/x/exp/rand"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// DefaultMaxRetries bounds the rejection-sampling loop; on terminal-dense
// datasets the unbounded reference loop can spin forever.
const DefaultMaxRetries = 10000

// TrajectorySampler draws fixed-length, terminal-free index windows
type TrajectorySampler struct {
	rng        *rand.Rand
	maxRetries int
	collector  *metrics.MetricsCollector
}

// NewTrajectorySampler creates a sampler over the given RNG.
// maxRetries <= 0 selects DefaultMaxRetries; collector may be nil.
func NewTrajectorySampler(rng *rand.Rand, maxRetries int, collector *metrics.MetricsCollector) *TrajectorySampler {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &TrajectorySampler{
		rng:        rng,
		maxRetries: maxRetries,
		collector:  collector,
	}
}

// Sample draws one terminal-free window of length lenT and returns its
// contiguous indices together with the ground-truth summed reward.
func (s *TrajectorySampler) Sample(ds *dataset.TransitionDataset, lenT int) ([]int, float64, error) {
	n := ds.Len()
	if lenT <= 0 || lenT >= n {
		return nil, 0, errors.FromCodef(errors.ErrInvalidTrajectoryLength,
			"len_t=%d, dataset size %d", lenT, n)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		start := s.rng.Intn(n - lenT)
		if s.windowClear(ds, start, lenT) {
			indices := make([]int, lenT)
			for i := range indices {
				indices[i] = start + i
			}
			return indices, ds.SumRewards(start, lenT), nil
		}
		if s.collector != nil {
			s.collector.IncrementCounter("sampling_retries_total", nil)
		}
	}

	return nil, 0, errors.FromCodef(errors.ErrSamplingExhausted,
		"no terminal-free window of length %d found in %d attempts", lenT, s.maxRetries)
}

// windowClear reports whether [start, start+lenT) contains no terminal
func (s *TrajectorySampler) windowClear(ds *dataset.TransitionDataset, start, lenT int) bool {
	for i := start; i < start+lenT; i++ {
		if ds.Terminals[i] {
			return false
		}
	}
	return true
}
