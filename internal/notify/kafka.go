package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"monitord/internal/domain"
)

// AuditSink records every emitted alert event for the downstream persistence
// layer. The record shape and query side live outside this service; the sink
// is only the write point.
type AuditSink struct {
	writer *kafka.Writer
}

func NewAuditSink(brokers []string, topic string) *AuditSink {
	return &AuditSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (s *AuditSink) Publish(ctx context.Context, event domain.AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Service),
		Value: payload,
	})
}

func (s *AuditSink) Close() error {
	return s.writer.Close()
}
