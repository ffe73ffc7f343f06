package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
)

const (
	defaultBatchSize    = 100
	defaultBatchTimeout = 100 * time.Millisecond
)

// messageWriter is the subset of *kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter creates a synchronous Kafka writer acknowledged by all replicas.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.ReferenceHash{},
		BatchSize:              defaultBatchSize,
		BatchTimeout:           defaultBatchTimeout,
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: false,
	}
}

// postProcessPublisher implements outbound.PostProcessSignalPort on a Kafka topic.
type postProcessPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewPostProcessPublisher creates a Kafka post-process signal publisher.
func NewPostProcessPublisher(writer messageWriter) outbound.PostProcessSignalPort {
	return &postProcessPublisher{writer: writer, now: time.Now}
}

// Signal publishes the transaction keyed by reference so signals of one transaction stay ordered.
func (p *postProcessPublisher) Signal(ctx context.Context, tx *model.Transaction) error {
	value, err := json.Marshal(model.NewPostProcessSignal(tx, p.now()))
	if err != nil {
		return fmt.Errorf("marshal post-process signal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(tx.Reference),
		Value: value,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(tx.Operation)},
			{Key: "transaction_id", Value: []byte(strconv.FormatInt(tx.ID, 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish post-process signal: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.PostProcessSignalPort = (*postProcessPublisher)(nil)
