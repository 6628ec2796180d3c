// Package service orchestrates the relabeling pipeline end to end:
// corpus generation, reward model training, and dataset relabeling.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/openpbrl/openpbrl/internal/app/dto"
	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/domain/run"
	"github.com/openpbrl/openpbrl/internal/infrastructure/message"
	"github.com/openpbrl/openpbrl/internal/infrastructure/repository/postgres"
	"github.com/openpbrl/openpbrl/internal/infrastructure/repository/redis"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/internal/platform/reward"
	"github.com/openpbrl/openpbrl/internal/platform/sampling"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/types"
	"github.com/openpbrl/openpbrl/pkg/validator"
)

// RelabelService coordinates relabeling runs. Repository, cache, and
// publisher are optional; the in-memory registry always tracks live runs.
type RelabelService struct {
	cfg       *config.Config
	store     storage.ArtifactStore
	runs      postgres.RunRepository
	cache     redis.CacheRepository
	publisher message.EventPublisher
	validate  *validator.Validator
	logger    logging.Logger
	collector *metrics.MetricsCollector
	tracer    trace.Tracer

	registry sync.Map // run ID -> *run.Run
}

// NewRelabelService wires the service. runs and cache may be nil, publisher
// nil falls back to a no-op publisher.
func NewRelabelService(
	cfg *config.Config,
	store storage.ArtifactStore,
	runs postgres.RunRepository,
	cache redis.CacheRepository,
	publisher message.EventPublisher,
	logger logging.Logger,
	collector *metrics.MetricsCollector,
	tracer trace.Tracer,
) *RelabelService {
	if publisher == nil {
		publisher = message.NopPublisher{}
	}
	return &RelabelService{
		cfg:       cfg,
		store:     store,
		runs:      runs,
		cache:     cache,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		collector: collector,
		tracer:    tracer,
	}
}

// StartRun registers a run and executes it asynchronously.
func (s *RelabelService) StartRun(ctx context.Context, req *dto.RelabelRequest) (*dto.RunResponse, error) {
	rec, hp, err := s.register(ctx, req)
	if err != nil {
		return nil, err
	}
	go func() {
		// Run outlives the HTTP request that started it.
		runCtx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
		defer cancel()
		s.execute(runCtx, rec, hp)
	}()
	return toResponse(rec), nil
}

// RunSync registers a run and executes it before returning, for CLI use.
func (s *RelabelService) RunSync(ctx context.Context, req *dto.RelabelRequest) (*dto.RunResponse, error) {
	rec, hp, err := s.register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.execute(ctx, rec, hp)
	current, err := s.GetRun(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if current.Status == types.RunStatusFailed {
		return current, errors.FromCodef(errors.ErrRunFailed, "run %s: %s", current.RunID, current.Error)
	}
	return current, nil
}

// GetRun resolves a run from the registry, then cache, then repository.
func (s *RelabelService) GetRun(ctx context.Context, id string) (*dto.RunResponse, error) {
	if v, ok := s.registry.Load(id); ok {
		return toResponse(v.(*run.Run)), nil
	}
	if s.cache != nil {
		if rec, err := s.cache.GetRun(ctx, id); err == nil {
			return toResponse(rec), nil
		}
	}
	if s.runs != nil {
		rec, err := s.runs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return toResponse(rec), nil
	}
	return nil, errors.FromCodef(errors.ErrRunNotFound, "run %s", id)
}

// ListRuns returns recent runs from the repository when configured,
// otherwise the contents of the in-memory registry.
func (s *RelabelService) ListRuns(ctx context.Context, limit, offset int) ([]*dto.RunResponse, error) {
	if s.runs != nil {
		recs, err := s.runs.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		out := make([]*dto.RunResponse, len(recs))
		for i, rec := range recs {
			out[i] = toResponse(rec)
		}
		return out, nil
	}
	var out []*dto.RunResponse
	s.registry.Range(func(_, v interface{}) bool {
		out = append(out, toResponse(v.(*run.Run)))
		return true
	})
	return out, nil
}

// DatasetStats loads a stored dataset and summarizes it.
func (s *RelabelService) DatasetStats(ctx context.Context, key string) (*dto.DatasetStatsResponse, error) {
	ds, err := s.loadDataset(ctx, key)
	if err != nil {
		return nil, err
	}
	return &dto.DatasetStatsResponse{DatasetKey: key, Stats: ds.ComputeStats()}, nil
}

// UploadDataset validates and stores a transition dataset under key.
func (s *RelabelService) UploadDataset(ctx context.Context, key string, data []byte) error {
	ds, err := dataset.Decode(data)
	if err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return err
	}
	return s.store.Put(ctx, key, data)
}

func (s *RelabelService) register(ctx context.Context, req *dto.RelabelRequest) (*run.Run, types.Hyperparameters, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, types.Hyperparameters{}, err
	}
	hp := req.Hyperparameters(s.cfg.PbRL.Hyperparameters)

	id := uuid.NewString()
	outputKey := req.OutputKey
	if outputKey == "" {
		outputKey = fmt.Sprintf("relabeled/%s.json", id)
	}
	now := time.Now().UTC()
	rec := &run.Run{
		ID:            id,
		Status:        types.RunStatusPending,
		DatasetKey:    req.DatasetKey,
		CorpusKey:     artifactKey("corpora", req.DatasetKey, hp),
		CheckpointKey: artifactKey("checkpoints", req.DatasetKey, hp),
		OutputKey:     outputKey,
		NumPairs:      hp.NumPairs,
		TrajectoryLen: hp.TrajectoryLen,
		Epochs:        hp.Epochs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.registry.Store(id, rec)
	if s.runs != nil {
		if err := s.runs.Create(ctx, rec); err != nil {
			return nil, types.Hyperparameters{}, err
		}
	}
	s.persistStatus(ctx, rec, types.RunStatusPending, "")
	return rec, hp, nil
}

// execute runs the full pipeline and records the terminal status.
func (s *RelabelService) execute(ctx context.Context, rec *run.Run, hp types.Hyperparameters) {
	ctx, span := s.tracer.Start(ctx, "service.RelabelService.execute")
	defer span.End()
	started := time.Now()

	s.persistStatus(ctx, rec, types.RunStatusRunning, "")
	if err := s.pipeline(ctx, rec, hp); err != nil {
		s.logger.Error("relabeling run failed",
			logging.String("run_id", rec.ID),
			logging.Err(err))
		s.persistStatus(ctx, rec, types.RunStatusFailed, err.Error())
		if s.collector != nil {
			s.collector.IncrementCounter("runs_total", map[string]string{"status": "failed"})
		}
		return
	}
	s.persistStatus(ctx, rec, types.RunStatusCompleted, "")
	if s.collector != nil {
		s.collector.IncrementCounter("runs_total", map[string]string{"status": "completed"})
		s.collector.ObserveHistogram("run_duration_seconds", time.Since(started).Seconds(),
			map[string]string{"phase": "run"})
	}
	s.logger.Info("relabeling run completed",
		logging.String("run_id", rec.ID),
		logging.String("output_key", rec.OutputKey))
}

// BuildCorpus generates the preference corpus for a dataset, or returns the
// cached one when the derived key already exists.
func (s *RelabelService) BuildCorpus(ctx context.Context, req *dto.RelabelRequest) (*dto.CorpusResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	hp := req.Hyperparameters(s.cfg.PbRL.Hyperparameters)
	ds, err := s.prepareDataset(ctx, req.DatasetKey)
	if err != nil {
		return nil, err
	}

	rng := newRNG(hp.Seed)
	sampler := sampling.NewTrajectorySampler(rng, s.cfg.PbRL.MaxSampleRetries, s.collector)
	builder := sampling.NewPreferenceCorpusBuilder(sampler, s.store, s.logger, s.collector, s.tracer)
	key := artifactKey("corpora", req.DatasetKey, hp)
	corpus, err := builder.Build(ctx, ds, hp.NumPairs, hp.TrajectoryLen, key)
	if err != nil {
		return nil, err
	}
	return &dto.CorpusResponse{
		CorpusKey:     key,
		NumPairs:      corpus.NumPairs(),
		TrajectoryLen: corpus.TrajectoryLen,
	}, nil
}

// TrainModel runs corpus generation, labeling, and training without
// relabeling, and reports the final evaluation accuracy.
func (s *RelabelService) TrainModel(ctx context.Context, req *dto.RelabelRequest) (*dto.TrainResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	hp := req.Hyperparameters(s.cfg.PbRL.Hyperparameters)
	ds, err := s.prepareDataset(ctx, req.DatasetKey)
	if err != nil {
		return nil, err
	}

	rng := newRNG(hp.Seed)
	sampler := sampling.NewTrajectorySampler(rng, s.cfg.PbRL.MaxSampleRetries, s.collector)
	builder := sampling.NewPreferenceCorpusBuilder(sampler, s.store, s.logger, s.collector, s.tracer)
	corpusKey := artifactKey("corpora", req.DatasetKey, hp)
	corpus, err := builder.Build(ctx, ds, hp.NumPairs, hp.TrajectoryLen, corpusKey)
	if err != nil {
		return nil, err
	}

	labeler := sampling.NewPreferenceLabeler(rng, s.logger)
	batch, err := labeler.Label(ctx, ds, corpus, hp.NumPairs)
	if err != nil {
		return nil, err
	}

	evaluator := reward.NewEvaluator(sampler, rng, s.logger, s.tracer)
	trainer := reward.NewLatentRewardTrainer(s.trainerConfig(hp), s.store, evaluator, rng, s.logger, s.collector, s.tracer)
	checkpointKey := artifactKey("checkpoints", req.DatasetKey, hp)
	result, err := trainer.Train(ctx, ds, batch, checkpointKey)
	if err != nil {
		return nil, err
	}

	accuracy, err := evaluator.Evaluate(ctx, ds, result.Model, s.cfg.PbRL.EvalPairs, hp.TrajectoryLen)
	if err != nil {
		return nil, err
	}
	return &dto.TrainResponse{
		CorpusKey:     corpusKey,
		CheckpointKey: checkpointKey,
		Accuracy:      accuracy,
	}, nil
}

func (s *RelabelService) pipeline(ctx context.Context, rec *run.Run, hp types.Hyperparameters) error {
	ds, err := s.prepareDataset(ctx, rec.DatasetKey)
	if err != nil {
		return err
	}

	rng := newRNG(hp.Seed)
	sampler := sampling.NewTrajectorySampler(rng, s.cfg.PbRL.MaxSampleRetries, s.collector)
	builder := sampling.NewPreferenceCorpusBuilder(sampler, s.store, s.logger, s.collector, s.tracer)
	corpus, err := builder.Build(ctx, ds, hp.NumPairs, hp.TrajectoryLen, rec.CorpusKey)
	if err != nil {
		return err
	}

	labeler := sampling.NewPreferenceLabeler(rng, s.logger)
	batch, err := labeler.Label(ctx, ds, corpus, hp.NumPairs)
	if err != nil {
		return err
	}

	evaluator := reward.NewEvaluator(sampler, rng, s.logger, s.tracer)
	trainer := reward.NewLatentRewardTrainer(s.trainerConfig(hp), s.store, evaluator, rng, s.logger, s.collector, s.tracer)
	result, err := trainer.Train(ctx, ds, batch, rec.CheckpointKey)
	if err != nil {
		return err
	}

	accuracy, err := evaluator.Evaluate(ctx, ds, result.Model, s.cfg.PbRL.EvalPairs, hp.TrajectoryLen)
	if err != nil {
		return err
	}
	rec.Accuracy = &accuracy
	if s.runs != nil {
		if err := s.runs.SetAccuracy(ctx, rec.ID, accuracy); err != nil {
			return err
		}
	}
	s.logger.Info("reward model evaluated",
		logging.String("run_id", rec.ID),
		logging.Float64("accuracy", accuracy))

	pipeline := reward.NewRelabelingPipeline(s.logger, s.collector, s.tracer)
	relabeled, err := pipeline.Relabel(ctx, ds, result.Model, result.Indices)
	if err != nil {
		return err
	}
	data, err := dataset.Encode(relabeled)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, rec.OutputKey, data)
}

func (s *RelabelService) trainerConfig(hp types.Hyperparameters) config.PbRLConfig {
	cfg := s.cfg.PbRL
	cfg.Hyperparameters = hp
	return cfg
}

func (s *RelabelService) loadDataset(ctx context.Context, key string) (*dataset.TransitionDataset, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return dataset.Decode(data)
}

// prepareDataset loads a stored dataset and applies the configured scaling
func (s *RelabelService) prepareDataset(ctx context.Context, key string) (*dataset.TransitionDataset, error) {
	ds, err := s.loadDataset(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.cfg.PbRL.ScaleRewards {
		return ds.ScaleRewards()
	}
	return ds, nil
}

func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// persistStatus updates the registry, cache, repository, and event stream.
// Side-channel failures are logged, not propagated: the run's own outcome
// must not depend on them.
func (s *RelabelService) persistStatus(ctx context.Context, rec *run.Run, status types.RunStatus, errMsg string) {
	rec.Status = status
	rec.Error = errMsg
	rec.UpdatedAt = time.Now().UTC()
	s.registry.Store(rec.ID, rec)

	if s.cache != nil {
		if err := s.cache.SaveRun(ctx, rec); err != nil {
			s.logger.Warn("run cache update failed",
				logging.String("run_id", rec.ID), logging.Err(err))
		}
	}
	if s.runs != nil && status != types.RunStatusPending {
		if err := s.runs.UpdateStatus(ctx, rec.ID, status, errMsg); err != nil {
			s.logger.Warn("run record update failed",
				logging.String("run_id", rec.ID), logging.Err(err))
		}
	}
	event := &types.RunEvent{
		RunID:      rec.ID,
		Status:     status,
		DatasetKey: rec.DatasetKey,
		Message:    errMsg,
		Timestamp:  rec.UpdatedAt,
	}
	if rec.Accuracy != nil {
		event.Metrics = map[string]float64{"accuracy": *rec.Accuracy}
	}
	if err := s.publisher.PublishRunEvent(ctx, event); err != nil {
		s.logger.Warn("run event publish failed",
			logging.String("run_id", rec.ID), logging.Err(err))
	}
}

// artifactKey derives a deterministic cache key so corpora and checkpoints
// are shared across runs with identical sampling settings.
func artifactKey(prefix, datasetKey string, hp types.Hyperparameters) string {
	safe := strings.NewReplacer("/", "_", " ", "_").Replace(datasetKey)
	return fmt.Sprintf("%s/%s-n%d-t%d.json", prefix, safe, hp.NumPairs, hp.TrajectoryLen)
}

func toResponse(rec *run.Run) *dto.RunResponse {
	return &dto.RunResponse{
		RunID:         rec.ID,
		Status:        rec.Status,
		DatasetKey:    rec.DatasetKey,
		CorpusKey:     rec.CorpusKey,
		CheckpointKey: rec.CheckpointKey,
		OutputKey:     rec.OutputKey,
		Accuracy:      rec.Accuracy,
		Error:         rec.Error,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}
