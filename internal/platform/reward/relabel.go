package reward

import (
	"context"

	"github.com/openpbrl/openpbrl/internal/domain/dataset"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/internal/observability/trace"
)

// RelabelingPipeline replaces ground-truth rewards with model predictions
// over a chosen set of transitions.
type RelabelingPipeline struct {
	logger    logging.Logger
	collector *metrics.MetricsCollector
	tracer    trace.Tracer
}

// NewRelabelingPipeline wires a pipeline; collector may be nil.
func NewRelabelingPipeline(logger logging.Logger, collector *metrics.MetricsCollector, tracer trace.Tracer) *RelabelingPipeline {
	return &RelabelingPipeline{logger: logger, collector: collector, tracer: tracer}
}

// Relabel returns the transitions at indices, in order, with their rewards
// replaced by the model's predictions. The source dataset is untouched, so
// relabeling the same indices twice yields identical output.
func (p *RelabelingPipeline) Relabel(ctx context.Context, ds *dataset.TransitionDataset, model *LatentRewardModel, indices []int) (*dataset.TransitionDataset, error) {
	_, span := p.tracer.Start(ctx, "reward.RelabelingPipeline.Relabel")
	defer span.End()

	rewards, err := model.Predict(ds, indices)
	if err != nil {
		return nil, err
	}
	subset, err := ds.Subset(indices)
	if err != nil {
		return nil, err
	}
	relabeled, err := subset.WithRewards(rewards)
	if err != nil {
		return nil, err
	}

	p.logger.Info("transitions relabeled", logging.Int("rows", relabeled.Len()))
	if p.collector != nil {
		p.collector.AddCounter("relabel_rows_total", float64(relabeled.Len()), nil)
	}
	return relabeled, nil
}
