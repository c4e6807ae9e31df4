package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards every published snapshot to a Kafka topic, keyed
// by snapshot id.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	log    *slog.Logger
}

var _ ports.SnapshotPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a synchronous writer for topic.
func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newKafkaPublisher(w, topic, log)
}

func newKafkaPublisher(w messageWriter, topic string, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		log:    log.With(slog.String("component", "kafka-publisher"), slog.String("topic", topic)),
	}
}

// PublishSnapshot writes the snapshot as JSON.
func (p *KafkaPublisher) PublishSnapshot(ctx context.Context, snap domain.DashboardSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(snap.ID),
		Value: b,
		Time:  snap.ComputedAt,
		Headers: []kafka.Header{
			{Key: "sequence", Value: []byte(strconv.FormatUint(snap.Sequence, 10))},
			{Key: "degraded", Value: []byte(strconv.FormatBool(snap.Degraded))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}
	p.log.Debug("snapshot published", slog.String("id", snap.ID), slog.Uint64("sequence", snap.Sequence))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
