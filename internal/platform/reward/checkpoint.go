package reward

import (
	"gonum.org/v1/gonum/mat"

	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

// Checkpoint is the serialized form of a trained model together with the
// last completed epoch, used to resume interrupted training runs.
type Checkpoint struct {
	Epoch   int         `json:"epoch"`
	Sizes   []int       `json:"sizes"`
	Weights [][]float64 `json:"weights"` // row-major, one slice per layer
	Biases  [][]float64 `json:"biases"`
}

// Snapshot captures the model's parameters after the given epoch.
func (m *LatentRewardModel) Snapshot(epoch int) *Checkpoint {
	c := &Checkpoint{
		Epoch: epoch,
		Sizes: append([]int{}, m.sizes...),
	}
	for l := range m.weights {
		c.Weights = append(c.Weights, append([]float64{}, m.weights[l].RawMatrix().Data...))
		c.Biases = append(c.Biases, append([]float64{}, m.biases[l].RawVector().Data...))
	}
	return c
}

// FromCheckpoint reconstructs a model from a snapshot.
func FromCheckpoint(c *Checkpoint) (*LatentRewardModel, error) {
	if len(c.Sizes) < 2 || len(c.Weights) != len(c.Sizes)-1 || len(c.Biases) != len(c.Sizes)-1 {
		return nil, errors.FromCodef(errors.ErrDimensionMismatch,
			"checkpoint layers misaligned: sizes=%d weights=%d biases=%d",
			len(c.Sizes), len(c.Weights), len(c.Biases))
	}
	m := &LatentRewardModel{sizes: append([]int{}, c.Sizes...)}
	for l := 0; l < len(c.Sizes)-1; l++ {
		rows, cols := c.Sizes[l+1], c.Sizes[l]
		if len(c.Weights[l]) != rows*cols || len(c.Biases[l]) != rows {
			return nil, errors.FromCodef(errors.ErrDimensionMismatch,
				"checkpoint layer %d tensor sizes %dx%d vs %d weights, %d biases",
				l, rows, cols, len(c.Weights[l]), len(c.Biases[l]))
		}
		m.weights = append(m.weights, mat.NewDense(rows, cols, append([]float64{}, c.Weights[l]...)))
		m.biases = append(m.biases, mat.NewVecDense(rows, append([]float64{}, c.Biases[l]...)))
	}
	return m, nil
}

// EncodeCheckpoint serializes a checkpoint for artifact storage.
func EncodeCheckpoint(c *Checkpoint) ([]byte, error) {
	return utils.ToJSONBytes(c)
}

// DecodeCheckpoint deserializes a stored checkpoint.
func DecodeCheckpoint(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := utils.FromJSONBytes(data, &c); err != nil {
		return nil, errors.Wrap(err, errors.ErrArtifactDecodeFailed.Code, "decode checkpoint")
	}
	return &c, nil
}
