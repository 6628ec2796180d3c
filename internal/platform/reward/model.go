// Package reward implements the latent reward model and its training,
// evaluation, and relabeling routines.
package reward

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// hiddenLayers is the depth of the MLP between input and scalar head
const hiddenLayers = 3

// LatentRewardModel is a fully connected network mapping a transition
// feature vector to a scalar reward in (-1, 1). Hidden layers use ReLU,
// the head uses tanh.
type LatentRewardModel struct {
	sizes   []int
	weights []*mat.Dense // weights[l] has shape sizes[l+1] x sizes[l]
	biases  []*mat.VecDense
}

// NewLatentRewardModel builds a model with Xavier-uniform initialized
// weights and zero biases.
func NewLatentRewardModel(inputDim, hiddenDim int, rng *rand.Rand) (*LatentRewardModel, error) {
	if inputDim <= 0 || hiddenDim <= 0 {
		return nil, errors.FromCodef(errors.ErrDimensionMismatch,
			"input_dim=%d hidden_dim=%d", inputDim, hiddenDim)
	}
	sizes := make([]int, 0, hiddenLayers+2)
	sizes = append(sizes, inputDim)
	for i := 0; i < hiddenLayers; i++ {
		sizes = append(sizes, hiddenDim)
	}
	sizes = append(sizes, 1)

	m := &LatentRewardModel{sizes: sizes}
	for l := 0; l < len(sizes)-1; l++ {
		fanIn, fanOut := sizes[l], sizes[l+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		w := mat.NewDense(fanOut, fanIn, nil)
		for i := 0; i < fanOut; i++ {
			for j := 0; j < fanIn; j++ {
				w.Set(i, j, (2*rng.Float64()-1)*limit)
			}
		}
		m.weights = append(m.weights, w)
		m.biases = append(m.biases, mat.NewVecDense(fanOut, nil))
	}
	return m, nil
}

// InputDim returns the expected feature width
func (m *LatentRewardModel) InputDim() int {
	return m.sizes[0]
}

// HiddenDim returns the hidden layer width
func (m *LatentRewardModel) HiddenDim() int {
	return m.sizes[1]
}

// Forward runs the batch through the network and returns one reward per row.
func (m *LatentRewardModel) Forward(features *mat.Dense) ([]float64, error) {
	acts, _, err := m.forward(features)
	if err != nil {
		return nil, err
	}
	out := acts[len(acts)-1]
	n, _ := out.Dims()
	rewards := make([]float64, n)
	for i := 0; i < n; i++ {
		rewards[i] = out.At(i, 0)
	}
	return rewards, nil
}

// Predict returns the model's rewards for the transitions at indices.
func (m *LatentRewardModel) Predict(ds *dataset.TransitionDataset, indices []int) ([]float64, error) {
	subset, err := ds.Subset(indices)
	if err != nil {
		return nil, err
	}
	features, err := FeatureMatrix(subset)
	if err != nil {
		return nil, err
	}
	return m.Forward(features)
}

// forward returns post-activations per layer (acts[0] is the input) and the
// pre-activations consumed by backprop.
func (m *LatentRewardModel) forward(features *mat.Dense) ([]*mat.Dense, []*mat.Dense, error) {
	n, dim := features.Dims()
	if dim != m.sizes[0] {
		return nil, nil, errors.FromCodef(errors.ErrDimensionMismatch,
			"feature width %d, model input %d", dim, m.sizes[0])
	}

	acts := make([]*mat.Dense, 0, len(m.weights)+1)
	preActs := make([]*mat.Dense, 0, len(m.weights))
	acts = append(acts, features)

	for l, w := range m.weights {
		z := mat.NewDense(n, m.sizes[l+1], nil)
		z.Mul(acts[l], w.T())
		for i := 0; i < n; i++ {
			for j := 0; j < m.sizes[l+1]; j++ {
				z.Set(i, j, z.At(i, j)+m.biases[l].AtVec(j))
			}
		}
		preActs = append(preActs, z)

		a := mat.NewDense(n, m.sizes[l+1], nil)
		if l == len(m.weights)-1 {
			a.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, z)
		} else {
			a.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
		}
		acts = append(acts, a)
	}
	return acts, preActs, nil
}

// backward computes parameter gradients for dLoss/dOutput given per-row
// output gradients. Returned slices align with parameters().
func (m *LatentRewardModel) backward(acts, preActs []*mat.Dense, dOut []float64) [][]float64 {
	n := len(dOut)
	last := len(m.weights) - 1

	// Head gradient through tanh.
	delta := mat.NewDense(n, 1, nil)
	out := acts[len(acts)-1]
	for i := 0; i < n; i++ {
		y := out.At(i, 0)
		delta.Set(i, 0, dOut[i]*(1-y*y))
	}

	gradW := make([]*mat.Dense, len(m.weights))
	gradB := make([]*mat.VecDense, len(m.biases))
	for l := last; l >= 0; l-- {
		gw := mat.NewDense(m.sizes[l+1], m.sizes[l], nil)
		gw.Mul(delta.T(), acts[l])
		gradW[l] = gw

		gb := mat.NewVecDense(m.sizes[l+1], nil)
		for j := 0; j < m.sizes[l+1]; j++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += delta.At(i, j)
			}
			gb.SetVec(j, sum)
		}
		gradB[l] = gb

		if l == 0 {
			break
		}
		dA := mat.NewDense(n, m.sizes[l], nil)
		dA.Mul(delta, m.weights[l])
		next := mat.NewDense(n, m.sizes[l], nil)
		z := preActs[l-1]
		for i := 0; i < n; i++ {
			for j := 0; j < m.sizes[l]; j++ {
				if z.At(i, j) > 0 {
					next.Set(i, j, dA.At(i, j))
				}
			}
		}
		delta = next
	}

	grads := make([][]float64, 0, 2*len(m.weights))
	for l := range m.weights {
		grads = append(grads, gradW[l].RawMatrix().Data)
		grads = append(grads, gradB[l].RawVector().Data)
	}
	return grads
}

// parameters returns the raw backing slices of every weight and bias tensor,
// in the same order backward returns gradients.
func (m *LatentRewardModel) parameters() [][]float64 {
	params := make([][]float64, 0, 2*len(m.weights))
	for l := range m.weights {
		params = append(params, m.weights[l].RawMatrix().Data)
		params = append(params, m.biases[l].RawVector().Data)
	}
	return params
}

// FeatureMatrix stacks the dataset's observation+action rows into a matrix.
func FeatureMatrix(ds *dataset.TransitionDataset) (*mat.Dense, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	n, dim := ds.Len(), ds.FeatureDim()
	if n == 0 || dim == 0 {
		return nil, errors.FromCodef(errors.ErrDimensionMismatch,
			"cannot build feature matrix: rows=%d width=%d", n, dim)
	}
	data := make([]float64, 0, n*dim)
	for i := 0; i < n; i++ {
		data = append(data, ds.FeatureRow(i)...)
	}
	return mat.NewDense(n, dim, data), nil
}
