// Package dto defines request/response shapes of the service layer.
package dto

import (
	"time"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/pkg/types"
)

// RelabelRequest starts an end-to-end relabeling run over a stored dataset.
// Zero-valued hyperparameters fall back to the configured defaults.
type RelabelRequest struct {
	// DatasetKey locates the transition dataset in the artifact store
	DatasetKey string `json:"dataset_key" validate:"required"`

	// OutputKey receives the relabeled dataset; empty derives one from the run ID
	OutputKey string `json:"output_key,omitempty"`

	NumPairs      int     `json:"num_pairs,omitempty" validate:"gte=0"`
	TrajectoryLen int     `json:"trajectory_len,omitempty" validate:"gte=0"`
	Epochs        int     `json:"epochs,omitempty" validate:"gte=0"`
	Patience      int     `json:"patience,omitempty" validate:"gte=0"`
	LearningRate  float64 `json:"learning_rate,omitempty" validate:"gte=0"`
	HiddenDim     int     `json:"hidden_dim,omitempty" validate:"gte=0"`
	Seed          uint64  `json:"seed,omitempty"`
}

// Hyperparameters merges the request over the configured defaults
func (r *RelabelRequest) Hyperparameters(defaults types.Hyperparameters) types.Hyperparameters {
	hp := defaults
	if r.NumPairs > 0 {
		hp.NumPairs = r.NumPairs
	}
	if r.TrajectoryLen > 0 {
		hp.TrajectoryLen = r.TrajectoryLen
	}
	if r.Epochs > 0 {
		hp.Epochs = r.Epochs
	}
	if r.Patience > 0 {
		hp.Patience = r.Patience
	}
	if r.LearningRate > 0 {
		hp.LearningRate = r.LearningRate
	}
	if r.HiddenDim > 0 {
		hp.HiddenDim = r.HiddenDim
	}
	if r.Seed != 0 {
		hp.Seed = r.Seed
	}
	return hp
}

// CorpusResponse reports a generated (or cached) preference corpus
type CorpusResponse struct {
	CorpusKey     string `json:"corpus_key"`
	NumPairs      int    `json:"num_pairs"`
	TrajectoryLen int    `json:"trajectory_len"`
}

// TrainResponse reports a completed training pass
type TrainResponse struct {
	CorpusKey     string  `json:"corpus_key"`
	CheckpointKey string  `json:"checkpoint_key"`
	Accuracy      float64 `json:"accuracy"`
}

// RunResponse reports the state of a relabeling run
type RunResponse struct {
	RunID         string          `json:"run_id"`
	Status        types.RunStatus `json:"status"`
	DatasetKey    string          `json:"dataset_key"`
	CorpusKey     string          `json:"corpus_key,omitempty"`
	CheckpointKey string          `json:"checkpoint_key,omitempty"`
	OutputKey     string          `json:"output_key,omitempty"`
	Accuracy      *float64        `json:"accuracy,omitempty"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DatasetStatsResponse reports dataset summary statistics
type DatasetStatsResponse struct {
	DatasetKey string        `json:"dataset_key"`
	Stats      dataset.Stats `json:"stats"`
}
