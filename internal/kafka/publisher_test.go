package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"

	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// fakeSyncProducer records sent messages. Embedding the interface leaves the
// unused methods panicking if a test ever reaches them.
type fakeSyncProducer struct {
	sarama.SyncProducer
	sent    []*sarama.ProducerMessage
	sendErr error
	closed  bool
}

func (f *fakeSyncProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	if f.sendErr != nil {
		return 0, 0, f.sendErr
	}
	f.sent = append(f.sent, msg)
	return 0, int64(len(f.sent)), nil
}

func (f *fakeSyncProducer) Close() error {
	f.closed = true
	return nil
}

func TestSyncPublisher_PublishMapsGroupToKey(t *testing.T) {
	producer := &fakeSyncProducer{}
	p := newSyncPublisherWith(producer, log.NewNoopLogger())

	err := p.Publish(context.Background(), "killrweather.raw", "killrweather.group", "payload-1")
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if len(producer.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(producer.sent))
	}
	msg := producer.sent[0]
	if msg.Topic != "killrweather.raw" {
		t.Errorf("Topic = %q, want killrweather.raw", msg.Topic)
	}
	key, err := msg.Key.Encode()
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	if string(key) != "killrweather.group" {
		t.Errorf("Key = %q, want killrweather.group", key)
	}
	value, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode value: %v", err)
	}
	if string(value) != "payload-1" {
		t.Errorf("Value = %q, want payload-1", value)
	}
}

func TestSyncPublisher_PublishWrapsSendError(t *testing.T) {
	sendErr := errors.New("broker gone")
	p := newSyncPublisherWith(&fakeSyncProducer{sendErr: sendErr}, log.NewNoopLogger())

	err := p.Publish(context.Background(), "raw", "grp", "payload")
	if !errors.Is(err, sendErr) {
		t.Errorf("Publish = %v, want wrapped %v", err, sendErr)
	}
}

func TestSyncPublisher_PublishHonorsCanceledContext(t *testing.T) {
	producer := &fakeSyncProducer{}
	p := newSyncPublisherWith(producer, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Publish(ctx, "raw", "grp", "payload"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Publish = %v, want context.Canceled", err)
	}
	if len(producer.sent) != 0 {
		t.Errorf("sent %d messages after cancel, want 0", len(producer.sent))
	}
}

func TestSyncPublisher_CloseReleasesProducer(t *testing.T) {
	producer := &fakeSyncProducer{}
	p := newSyncPublisherWith(producer, log.NewNoopLogger())

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !producer.closed {
		t.Error("underlying producer not closed")
	}
}
