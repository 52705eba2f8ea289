package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/bmkg-mcp-server/internal/config"
	"github.com/couchcryptid/bmkg-mcp-server/internal/domain"
	"github.com/couchcryptid/bmkg-mcp-server/internal/observability"
)

// Writer publishes tool call events to the audit topic.
// It implements tools.AuditSink.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates an asynchronous Kafka producer for the audit topic.
// Delivery failures are logged and counted, not returned.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &Writer{metrics: metrics, logger: logger}
	w.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
		Async:        true,
		Completion:   w.completion,
	}
	return w
}

// Publish queues one event. The returned error covers serialization and
// queueing only.
func (w *Writer) Publish(ctx context.Context, event domain.ToolCallEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) completion(msgs []kafkago.Message, err error) {
	if err == nil {
		return
	}
	w.metrics.AuditErrors.Add(float64(len(msgs)))
	w.logger.Warn("audit delivery failed", "messages", len(msgs), "error", err)
}

// serializeToMessage marshals a ToolCallEvent into a Kafka message keyed by
// tool name.
func serializeToMessage(event domain.ToolCallEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize tool call event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Tool),
		Value: data,
		Time:  event.InvokedAt,
		Headers: []kafkago.Header{
			{Key: "tool", Value: []byte(event.Tool)},
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "invoked_at", Value: []byte(event.InvokedAt.Format(time.RFC3339))},
			{Key: "duration_ms", Value: []byte(strconv.FormatInt(event.DurationMS, 10))},
		},
	}, nil
}
