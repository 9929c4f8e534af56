// Package publish implements the EventPublisher interface using Kafka.
package publish

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/internal/domain/service"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// KafkaPublisher forwards security events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaPublisher creates a Kafka-backed event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) (service.EventPublisher, error) {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaPublisher{
		writer: writer,
		logger: log.WithComponent(constants.ComponentPublisher),
	}, nil
}

// PublishEvent sends one network event to the topic, keyed by device so all
// of a device's events land on one partition.
func (p *KafkaPublisher) PublishEvent(ctx context.Context, event *models.NetworkEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal network event", err)
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DeviceID),
		Value: bytes,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to write event to Kafka", err, logger.Fields{
			"event_id": event.EventID,
		})
	}
	return err
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// noopPublisher discards events. Used when Kafka is disabled.
type noopPublisher struct{}

// NewNoopPublisher creates a publisher that drops all events.
func NewNoopPublisher() service.EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishEvent(ctx context.Context, event *models.NetworkEvent) error { return nil }
func (noopPublisher) Close() error                                                       { return nil }
