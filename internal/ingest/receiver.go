package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/internal/kafka"
	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// ConnectFunc establishes the message-queue producer that defines the ingest
// worker's input stream.
type ConnectFunc func(ctx context.Context) (kafka.Publisher, error)

// Receiver is the ingest worker: on start it connects the queue producer and
// reports readiness to the supervisor exactly once; afterwards it publishes
// every raw record it is handed.
type Receiver struct {
	connect   ConnectFunc
	notify    func()
	logger    log.Logger
	publisher kafka.Publisher
}

// NewReceiver creates the ingest worker receiver. notify is invoked once,
// after the input stream is defined.
func NewReceiver(connect ConnectFunc, notify func(), logger log.Logger) *Receiver {
	return &Receiver{
		connect: connect,
		notify:  notify,
		logger:  logger,
	}
}

// Start defines the input stream and signals readiness. Run once by the
// worker before any record is processed.
func (r *Receiver) Start(ctx context.Context) error {
	pub, err := r.connect(ctx)
	if err != nil {
		return fmt.Errorf("define input stream: %w", err)
	}
	r.publisher = pub
	r.notify()
	return nil
}

// Receive publishes one raw record. Publish failures are logged, not
// retried; retry policy belongs to the queue client.
func (r *Receiver) Receive(ctx context.Context, msg interface{}) {
	rec, ok := msg.(domain.RawRecord)
	if !ok {
		r.logger.Warn("ingest worker received unexpected message", log.Any("message", msg))
		return
	}

	if err := r.publisher.Publish(ctx, rec.Topic, rec.Group, rec.Payload); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Error("publish record failed",
			log.String("topic", rec.Topic),
			log.Err(err),
		)
		return
	}
	metrics.RecordsPublished.Inc()
}

// Shutdown releases the queue producer.
func (r *Receiver) Shutdown() {
	if r.publisher != nil {
		if err := r.publisher.Close(); err != nil {
			r.logger.Warn("close publisher", log.Err(err))
		}
	}
}
