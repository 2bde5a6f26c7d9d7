package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/MyCarrier-DevOps/deploytrack/track"
)

// KafkaWriter is the producer surface the sink uses, satisfied by
// *kafka.Writer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// transitionRecord is the structured event published to the status topic.
type transitionRecord struct {
	ExecutionID  string `json:"pipelineID"`
	PipelineName string `json:"pipelineName,omitempty"`
	Stage        string `json:"stage"`
	Status       string `json:"status"`
	ErrorSummary string `json:"errorMessage,omitempty"`
	AISolution   string `json:"aiSolution,omitempty"`
	EventTime    string `json:"eventTime,omitempty"`
}

// KafkaSink publishes accepted transitions as JSON to a status topic for
// machine consumers, alongside the human-facing webhooks.
type KafkaSink struct {
	writer KafkaWriter
}

// NewKafkaSink wraps an existing producer.
func NewKafkaSink(writer KafkaWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// NewKafkaWriter builds a producer for the given broker address and topic.
func NewKafkaWriter(address, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:     []string{address},
		Topic:       topic,
		Balancer:    &kafka.LeastBytes{},
		Async:       true,
		MaxAttempts: 5,
	})
}

// PublishTransition writes one status change keyed by execution id.
func (k *KafkaSink) PublishTransition(ctx context.Context, ev track.Event, aiSolution string) error {
	value, err := json.Marshal(transitionRecord{
		ExecutionID:  ev.ExecutionID,
		PipelineName: ev.PipelineName,
		Stage:        ev.Stage.String(),
		Status:       ev.Status.String(),
		ErrorSummary: ev.ErrorSummary,
		AISolution:   aiSolution,
		EventTime:    ev.EventTime,
	})
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ExecutionID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("write transition: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
