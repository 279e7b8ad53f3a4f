// Package kafka is the message-queue client boundary: it moves raw records
// from the ingest worker into the topic the compute engine consumes.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// connectAttempts is how many times producer construction is retried before
// giving up. Brokers are commonly still starting when the node comes up.
const connectAttempts = 5

// Publisher pushes one raw record at a time to the message queue. The group
// travels with the record as the message key so downstream consumers can
// partition by it.
type Publisher interface {
	Publish(ctx context.Context, topic, group, payload string) error
	Close() error
}

// SyncPublisher implements Publisher on a sarama synchronous producer.
type SyncPublisher struct {
	producer sarama.SyncProducer
	logger   log.Logger
}

// NewSyncPublisher connects a synchronous producer to the given brokers,
// retrying with exponential backoff while the brokers come up.
func NewSyncPublisher(brokers []string, logger log.Logger) (*SyncPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 10 * time.Second

	back := newBackoff(defaultBackoffInitial, defaultBackoffMax)

	var (
		producer sarama.SyncProducer
		err      error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		producer, err = sarama.NewSyncProducer(brokers, cfg)
		if err == nil {
			break
		}
		logger.Warn("producer connect failed",
			log.Int("attempt", attempt),
			log.Err(err),
		)
		if attempt < connectAttempts {
			back.Sleep()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect producer: %w", err)
	}

	return &SyncPublisher{producer: producer, logger: logger}, nil
}

// newSyncPublisherWith wraps an existing producer. Used by tests.
func newSyncPublisherWith(producer sarama.SyncProducer, logger log.Logger) *SyncPublisher {
	return &SyncPublisher{producer: producer, logger: logger}
}

// Publish sends one record to the topic with the group as message key.
func (p *SyncPublisher) Publish(ctx context.Context, topic, group, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(group),
		Value: sarama.StringEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Close releases the underlying producer.
func (p *SyncPublisher) Close() error {
	return p.producer.Close()
}
