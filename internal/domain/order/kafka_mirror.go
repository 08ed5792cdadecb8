// internal/domain/order/kafka_mirror.go
package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the mirror needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaMirror publishes orders to a topic consumed by the order store
type KafkaMirror struct {
	writer messageWriter
}

// NewKafkaMirror creates a mirror writing to topic on brokers
func NewKafkaMirror(topic string, brokers ...string) *KafkaMirror {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaMirror{writer: w}
}

// Send publishes the payload keyed by the client order id
func (m *KafkaMirror) Send(ctx context.Context, payload *MirrorPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mirror payload: %w", err)
	}

	err = m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payload.ClientOrderID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order %s: %w", payload.ClientOrderID, err)
	}
	return nil
}

// Close flushes and closes the writer
func (m *KafkaMirror) Close() error {
	return m.writer.Close()
}
