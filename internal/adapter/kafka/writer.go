package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Writer publishes assessment events to a Kafka topic.
// It implements assessment.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured assessment topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		// Events are written one per request; do not hold them for a batch.
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one assessment event and writes it synchronously.
// Events for the same district share a key and therefore a partition.
func (w *Writer) Publish(ctx context.Context, event domain.AssessmentEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write assessment event: %w", err)
	}
	w.logger.Debug("assessment event published", "key", event.Key(), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AssessmentEvent into a Kafka message.
func serializeToMessage(event domain.AssessmentEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Key()),
		Value: data,
		Time:  event.EvaluatedAt,
		Headers: []kafkago.Header{
			{Key: "risk_class", Value: []byte(event.Assessment.Class)},
			{Key: "evaluated_at", Value: []byte(event.EvaluatedAt.Format(time.RFC3339))},
		},
	}, nil
}
