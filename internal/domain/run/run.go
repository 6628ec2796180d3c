// Package run defines the relabeling run aggregate persisted across the
// repository and cache layers.
package run

import (
	"time"

	"github.com/openpbrl/openpbrl/pkg/types"
)

// Run records one end-to-end relabeling run: corpus generation, reward model
// training, and relabeled dataset output.
type Run struct {
	ID            string           `gorm:"primaryKey;type:uuid" json:"id"`
	Status        types.RunStatus  `gorm:"type:varchar(32);index" json:"status"`
	DatasetKey    string           `gorm:"type:varchar(512)" json:"dataset_key"`
	CorpusKey     string           `gorm:"type:varchar(512)" json:"corpus_key"`
	CheckpointKey string           `gorm:"type:varchar(512)" json:"checkpoint_key"`
	OutputKey     string           `gorm:"type:varchar(512)" json:"output_key"`
	NumPairs      int              `json:"num_pairs"`
	TrajectoryLen int              `json:"trajectory_len"`
	Epochs        int              `json:"epochs"`
	Accuracy      *float64         `json:"accuracy,omitempty"`
	Error         string           `gorm:"type:text" json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName sets the table used by the relational repository
func (Run) TableName() string {
	return "pbrl_runs"
}

// Terminal reports whether the run can no longer change state
func (r *Run) Terminal() bool {
	return r.Status.Terminal()
}
