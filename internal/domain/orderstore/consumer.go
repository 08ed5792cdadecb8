// internal/domain/orderstore/consumer.go
package orderstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	defaultStoreBackoff = time.Second
	maxStoreBackoff     = 30 * time.Second
)

// messageReader is the subset of *kafka.Reader the consumer needs
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer stores orders published by the storefront Kafka mirror.
// An offset is committed only once its order is stored or rejected as
// invalid, so a store outage delays orders instead of dropping them.
type Consumer struct {
	service *Service
	reader  messageReader
	logger  *logrus.Logger
	backoff time.Duration
}

// NewConsumer creates a consumer in group for topic on brokers
func NewConsumer(service *Service, topic, group string, logger *logrus.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{service: service, reader: reader, logger: logger, backoff: defaultStoreBackoff}
}

// Run reads until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

// Close closes the underlying reader
func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.WithError(err).Error("Failed to close kafka reader")
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		c.logger.WithError(err).Error("Failed to read order message")
		return
	}

	log := c.logger.WithFields(logrus.Fields{
		"key":       string(m.Key),
		"partition": m.Partition,
		"offset":    m.Offset,
	})

	if !c.store(ctx, log, m) {
		// left uncommitted, redelivered after a restart
		return
	}
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		log.WithError(err).Error("Failed to commit order message")
	}
}

// store handles one message and reports whether its offset may be committed.
// Store failures other than validation are retried until ctx ends.
func (c *Consumer) store(ctx context.Context, log *logrus.Entry, m kafka.Message) bool {
	var req CreateRequest
	if err := json.Unmarshal(m.Value, &req); err != nil {
		log.WithError(err).Warn("Skipping unreadable order message")
		return true
	}

	backoff := c.backoff
	for attempt := 1; ; attempt++ {
		rec, created, err := c.service.Create(ctx, nil, req)
		if err == nil {
			if !created {
				log.WithField("order_number", rec.OrderNumber).Info("Mirrored order already stored, skipping")
			}
			return true
		}
		if errors.Is(err, ErrInvalidOrder) {
			log.WithError(err).Warn("Rejecting invalid mirrored order")
			return true
		}

		log.WithError(err).WithField("attempt", attempt).Warn("Failed to store mirrored order, retrying")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxStoreBackoff)
	}
}
