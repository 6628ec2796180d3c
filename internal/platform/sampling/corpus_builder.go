package sampling

import (
	"context"
	"math"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/infrastructure/storage"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
	"github.com/openpbrl/openpbrl/pkg/errors"
)

// PreferenceCorpusBuilder assembles Bradley-Terry preference corpora and
// caches them in the artifact store keyed by corpus key.
type PreferenceCorpusBuilder struct {
	sampler   *TrajectorySampler
	store     storage.ArtifactStore
	logger    logging.Logger
	collector *metrics.MetricsCollector
	tracer    trace.Tracer
}

// NewPreferenceCorpusBuilder wires a builder; store may be nil to disable caching.
func NewPreferenceCorpusBuilder(
	sampler *TrajectorySampler,
	store storage.ArtifactStore,
	logger logging.Logger,
	collector *metrics.MetricsCollector,
	tracer trace.Tracer,
) *PreferenceCorpusBuilder {
	return &PreferenceCorpusBuilder{
		sampler:   sampler,
		store:     store,
		logger:    logger,
		collector: collector,
		tracer:    tracer,
	}
}

// Build returns the corpus stored under key when present, otherwise samples
// numPairs fresh trajectory pairs, labels each with the Bradley-Terry
// preference probability, persists the result, and returns it.
func (b *PreferenceCorpusBuilder) Build(ctx context.Context, ds *dataset.TransitionDataset, numPairs, lenT int, key string) (*PairCorpus, error) {
	ctx, span := b.tracer.Start(ctx, "sampling.PreferenceCorpusBuilder.Build")
	defer span.End()

	if cached, ok, err := b.loadCached(ctx, key); err != nil {
		return nil, err
	} else if ok {
		b.logger.Info("preference corpus loaded from store",
			logging.String("key", key),
			logging.Int("num_pairs", cached.NumPairs()))
		if b.collector != nil {
			b.collector.IncrementCounter("corpus_builds_total", map[string]string{"source": "cache"})
		}
		return cached, nil
	}

	if numPairs <= 0 {
		return nil, errors.FromCodef(errors.ErrEmptyCorpus, "num_pairs=%d", numPairs)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	corpus := &PairCorpus{
		TrajectoryLen: lenT,
		FirstIndices:  make([][]int, numPairs),
		SecondIndices: make([][]int, numPairs),
		Preferences:   make([]float64, numPairs),
	}
	for i := 0; i < numPairs; i++ {
		first, rewardFirst, err := b.sampler.Sample(ds, lenT)
		if err != nil {
			return nil, err
		}
		second, rewardSecond, err := b.sampler.Sample(ds, lenT)
		if err != nil {
			return nil, err
		}
		corpus.FirstIndices[i] = first
		corpus.SecondIndices[i] = second
		corpus.Preferences[i] = preferenceProbability(rewardFirst, rewardSecond)
	}

	if err := b.persist(ctx, key, corpus); err != nil {
		return nil, err
	}
	b.logger.Info("preference corpus built",
		logging.String("key", key),
		logging.Int("num_pairs", numPairs),
		logging.Int("trajectory_len", lenT))
	if b.collector != nil {
		b.collector.IncrementCounter("corpus_builds_total", map[string]string{"source": "sampled"})
	}
	return corpus, nil
}

func (b *PreferenceCorpusBuilder) loadCached(ctx context.Context, key string) (*PairCorpus, bool, error) {
	if b.store == nil || key == "" {
		return nil, false, nil
	}
	data, err := b.store.Get(ctx, key)
	if errors.IsCode(err, errors.ErrArtifactNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	corpus, err := DecodeCorpus(data)
	if err != nil {
		return nil, false, err
	}
	return corpus, true, nil
}

func (b *PreferenceCorpusBuilder) persist(ctx context.Context, key string, corpus *PairCorpus) error {
	if b.store == nil || key == "" {
		return nil
	}
	data, err := EncodeCorpus(corpus)
	if err != nil {
		return errors.Wrap(err, errors.ErrArtifactPutFailed.Code, "encode pair corpus")
	}
	return b.store.Put(ctx, key, data)
}

// preferenceProbability computes exp(r1) / (exp(r1) + exp(r2)) as a
// numerically stable sigmoid of the reward difference.
func preferenceProbability(rewardFirst, rewardSecond float64) float64 {
	return 1.0 / (1.0 + math.Exp(rewardSecond-rewardFirst))
}
