// Package kafka implements run-event publishing over Kafka.
package kafka

import (
	"context"

	"github.com/IBM/sarama"

	"github.com/openpbrl/openpbrl/internal/infrastructure/message"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/pkg/config"
	"github.com/openpbrl/openpbrl/pkg/errors"
	"github.com/openpbrl/openpbrl/pkg/types"
	"github.com/openpbrl/openpbrl/pkg/utils"
)

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   logging.Logger
}

// NewPublisher creates a synchronous Kafka publisher for run events.
func NewPublisher(cfg config.KafkaConfig, logger logging.Logger) (message.EventPublisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	sc.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRunStoreUnavailable.Code, "connect kafka")
	}
	return &publisher{producer: producer, topic: cfg.Topic, logger: logger}, nil
}

// PublishRunEvent sends one event keyed by run ID so per-run ordering holds
// within a partition.
func (p *publisher) PublishRunEvent(ctx context.Context, event *types.RunEvent) error {
	payload, err := utils.ToJSONBytes(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrRunPersistFailed.Code, "encode run event")
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrap(err, errors.ErrRunPersistFailed.Code, "publish run event")
	}
	p.logger.Debug("run event published",
		logging.String("run_id", event.RunID),
		logging.String("status", string(event.Status)),
		logging.Any("partition", partition),
		logging.Any("offset", offset))
	return nil
}

func (p *publisher) Close() error {
	return p.producer.Close()
}
