// Package types provides shared type definitions for OpenPBRL.
package types

import "time"

// Hyperparameters bundles the preference-learning knobs callers supply.
// Zero values fall back to the defaults applied by the trainer and builders.
type Hyperparameters struct {
	// NumPairs is the number of trajectory pairs in the corpus (num_t)
	NumPairs int `json:"num_pairs" mapstructure:"num_pairs" validate:"gt=0"`

	// TrajectoryLen is the length of each sampled window (len_t)
	TrajectoryLen int `json:"trajectory_len" mapstructure:"trajectory_len" validate:"gt=0"`

	// Epochs is the maximum number of training epochs
	Epochs int `json:"epochs" mapstructure:"epochs" validate:"gt=0"`

	// Patience is the number of non-improving evaluation checkpoints tolerated
	// before early stopping
	Patience int `json:"patience" mapstructure:"patience" validate:"gte=0"`

	// LearningRate is the Adam step size
	LearningRate float64 `json:"learning_rate" mapstructure:"learning_rate" validate:"gt=0"`

	// HiddenDim is the width of the reward model's hidden layers
	HiddenDim int `json:"hidden_dim" mapstructure:"hidden_dim" validate:"gt=0"`

	// Seed seeds the sampling and initialization RNG
	Seed uint64 `json:"seed" mapstructure:"seed"`
}

// RunEvent is the lifecycle event published for a relabeling run
type RunEvent struct {
	RunID     string                 `json:"run_id"`
	Status    RunStatus              `json:"status"`
	DatasetKey string                `json:"dataset_key"`
	Message   string                 `json:"message,omitempty"`
	Metrics   map[string]float64     `json:"metrics,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
