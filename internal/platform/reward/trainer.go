package reward

import (
	"context"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/internal/platform/sampling"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// TrainResult carries the trained model together with the flattened
// transition indices its training rows were drawn from, in row order.
type TrainResult struct {
	Model   *LatentRewardModel
	Indices []int
}

// LatentRewardTrainer fits a LatentRewardModel to a labeled preference batch
// with full-batch Adam, loss-gated checkpoints, and patience early stopping.
type LatentRewardTrainer struct {
	cfg       config.PbRLConfig
	store     storage.ArtifactStore
	evaluator *Evaluator
	rng       *rand.Rand
	logger    logging.Logger
	collector *metrics.MetricsCollector
	tracer    trace.Tracer
}

// NewLatentRewardTrainer wires a trainer. store may be nil to disable
// checkpointing, evaluator may be nil to skip periodic evaluation.
func NewLatentRewardTrainer(
	cfg config.PbRLConfig,
	store storage.ArtifactStore,
	evaluator *Evaluator,
	rng *rand.Rand,
	logger logging.Logger,
	collector *metrics.MetricsCollector,
	tracer trace.Tracer,
) *LatentRewardTrainer {
	return &LatentRewardTrainer{
		cfg:       cfg,
		store:     store,
		evaluator: evaluator,
		rng:       rng,
		logger:    logger,
		collector: collector,
		tracer:    tracer,
	}
}

// Train fits a model to the labeled batch. When a checkpoint exists under
// checkpointKey, training resumes from the epoch after the one it recorded;
// a checkpoint from the final epoch returns immediately.
//
// The feature batch is assembled once and reused across epochs. Each pair's
// two segment reward sums are scored with a softmax cross-entropy against
// the pair's hard label, where class 0 means the first segment is preferred.
//
// Every CheckpointEvery epochs the training loss is compared against the best
// seen so far: an improvement persists a checkpoint and resets the patience
// counter, anything else counts toward early stopping. Evaluation accuracy is
// a logged diagnostic only and never gates convergence.
func (t *LatentRewardTrainer) Train(ctx context.Context, ds *dataset.TransitionDataset, batch *sampling.LabeledBatch, checkpointKey string) (*TrainResult, error) {
	ctx, span := t.tracer.Start(ctx, "reward.LatentRewardTrainer.Train")
	defer span.End()
	started := time.Now()

	numPairs := len(batch.Labels)
	lenT := t.cfg.Hyperparameters.TrajectoryLen
	epochs := t.cfg.Hyperparameters.Epochs
	if rows := batch.Dataset.Len(); rows != 2*numPairs*lenT {
		return nil, errors.FromCodef(errors.ErrDimensionMismatch,
			"labeled batch has %d rows, want 2*%d*%d", rows, numPairs, lenT)
	}

	features, err := FeatureMatrix(batch.Dataset)
	if err != nil {
		return nil, err
	}

	model, startEpoch, done, err := t.restore(ctx, checkpointKey, epochs)
	if err != nil {
		return nil, err
	}
	if done {
		t.logger.Info("checkpoint already covers final epoch, skipping training",
			logging.String("checkpoint_key", checkpointKey),
			logging.Int("epochs", epochs))
		return &TrainResult{Model: model, Indices: batch.Indices}, nil
	}
	if model == nil {
		model, err = NewLatentRewardModel(batch.Dataset.FeatureDim(), t.cfg.Hyperparameters.HiddenDim, t.rng)
		if err != nil {
			return nil, err
		}
	}

	// Target class per pair: 0 when the first segment won the Bernoulli draw.
	targets := make([]float64, numPairs)
	for i, label := range batch.Labels {
		if label > 0 {
			targets[i] = 1
		}
	}

	optimizer := NewAdam(t.cfg.Hyperparameters.LearningRate)
	checkpointEvery := t.cfg.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 50
	}

	bestLoss := math.Inf(1)
	stale := 0
	for epoch := startEpoch; epoch < epochs; epoch++ {
		loss, err := t.trainEpoch(model, optimizer, features, targets, numPairs, lenT)
		if err != nil {
			return nil, err
		}
		if t.collector != nil {
			t.collector.IncrementCounter("training_epochs_total", nil)
			t.collector.SetGauge("training_loss", loss, nil)
		}

		if (epoch+1)%checkpointEvery != 0 {
			continue
		}
		if t.evaluator != nil {
			accuracy, err := t.checkpointAccuracy(ctx, ds, model)
			if err != nil {
				return nil, err
			}
			t.logger.Info("training checkpoint",
				logging.Int("epoch", epoch),
				logging.Float64("loss", loss),
				logging.Float64("eval_accuracy", accuracy))
			if t.collector != nil {
				t.collector.SetGauge("eval_accuracy", accuracy, nil)
			}
		} else {
			t.logger.Info("training checkpoint",
				logging.Int("epoch", epoch),
				logging.Float64("loss", loss))
		}

		if loss < bestLoss {
			bestLoss = loss
			stale = 0
			if err := t.persist(ctx, checkpointKey, model.Snapshot(epoch)); err != nil {
				return nil, err
			}
			continue
		}
		stale++
		if stale >= t.cfg.Hyperparameters.Patience {
			t.logger.Info("early stopping",
				logging.Int("epoch", epoch),
				logging.Float64("best_loss", bestLoss))
			break
		}
	}

	if t.collector != nil {
		t.collector.ObserveHistogram("run_duration_seconds", time.Since(started).Seconds(),
			map[string]string{"phase": "train"})
	}
	return &TrainResult{Model: model, Indices: batch.Indices}, nil
}

// trainEpoch runs one full-batch forward/backward/update pass and returns
// the mean cross-entropy loss.
//
// Rows are laid out as all first-segment windows followed by all
// second-segment windows, pair-major within each half. The cross-entropy
// gradient of a pair's segment sum spreads uniformly over that segment's rows.
func (t *LatentRewardTrainer) trainEpoch(model *LatentRewardModel, optimizer *Adam, features *mat.Dense, targets []float64, numPairs, lenT int) (float64, error) {
	acts, preActs, err := model.forward(features)
	if err != nil {
		return 0, err
	}
	out := acts[len(acts)-1]
	half := numPairs * lenT

	var loss float64
	dOut := make([]float64, 2*half)
	for i := 0; i < numPairs; i++ {
		var sumFirst, sumSecond float64
		for r := 0; r < lenT; r++ {
			sumFirst += out.At(i*lenT+r, 0)
			sumSecond += out.At(half+i*lenT+r, 0)
		}
		diff := sumFirst - sumSecond
		pFirst := 1.0 / (1.0 + math.Exp(-diff))

		if targets[i] == 1 {
			loss += softplus(-diff)
		} else {
			loss += softplus(diff)
		}

		grad := (pFirst - targets[i]) / float64(numPairs)
		for r := 0; r < lenT; r++ {
			dOut[i*lenT+r] = grad
			dOut[half+i*lenT+r] = -grad
		}
	}
	loss /= float64(numPairs)

	grads := model.backward(acts, preActs, dOut)
	optimizer.Step(model.parameters(), grads)
	return loss, nil
}

// softplus computes log(1+exp(z)) without overflowing for large z
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// restore loads the checkpoint under key. done reports that the checkpoint
// already covers the final epoch.
func (t *LatentRewardTrainer) restore(ctx context.Context, key string, epochs int) (model *LatentRewardModel, startEpoch int, done bool, err error) {
	if t.store == nil || key == "" {
		return nil, 0, false, nil
	}
	data, err := t.store.Get(ctx, key)
	if errors.IsCode(err, errors.ErrArtifactNotFound) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	checkpoint, err := DecodeCheckpoint(data)
	if err != nil {
		return nil, 0, false, err
	}
	model, err = FromCheckpoint(checkpoint)
	if err != nil {
		return nil, 0, false, err
	}
	if checkpoint.Epoch >= epochs-1 {
		return model, 0, true, nil
	}
	t.logger.Info("resuming training from checkpoint",
		logging.String("checkpoint_key", key),
		logging.Int("epoch", checkpoint.Epoch))
	return model, checkpoint.Epoch + 1, false, nil
}

// checkpointAccuracy runs the periodic evaluation
func (t *LatentRewardTrainer) checkpointAccuracy(ctx context.Context, ds *dataset.TransitionDataset, model *LatentRewardModel) (float64, error) {
	evalPairs := t.cfg.EvalPairs
	if evalPairs <= 0 {
		evalPairs = 10000
	}
	return t.evaluator.Evaluate(ctx, ds, model, evalPairs, t.cfg.Hyperparameters.TrajectoryLen)
}

func (t *LatentRewardTrainer) persist(ctx context.Context, key string, checkpoint *Checkpoint) error {
	if t.store == nil || key == "" {
		return nil
	}
	data, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return errors.Wrap(err, errors.ErrArtifactPutFailed.Code, "encode checkpoint")
	}
	return t.store.Put(ctx, key, data)
}
