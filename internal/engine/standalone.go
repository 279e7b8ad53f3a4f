package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

const manifestFile = "engine.json"

// manifest is written to the checkpoint directory on start so an operator
// can see which topic and group the engine was bound to.
type manifest struct {
	Topic     string    `json:"topic"`
	Group     string    `json:"group"`
	StartedAt time.Time `json:"started_at"`
}

// Standalone is an in-process streaming engine: a consumer group on the raw
// topic whose records are parsed and folded through the registered pipelines.
type Standalone struct {
	brokers []string
	topic   string
	group   string
	logger  log.Logger

	// newConsumerGroup is swapped out by tests.
	newConsumerGroup func(brokers []string, group string, cfg *sarama.Config) (sarama.ConsumerGroup, error)

	mu            sync.Mutex
	started       bool
	checkpointDir string
	pipelines     []Pipeline

	client sarama.ConsumerGroup
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStandalone creates a stopped engine bound to the given topic and group.
func NewStandalone(brokers []string, topic, group string, logger log.Logger) *Standalone {
	return &Standalone{
		brokers:          brokers,
		topic:            topic,
		group:            group,
		logger:           logger,
		newConsumerGroup: sarama.NewConsumerGroup,
	}
}

// Register adds a pipeline. Returns ErrEngineStarted once the engine runs:
// the pipeline set is sealed at start.
func (e *Standalone) Register(p Pipeline) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return fmt.Errorf("register %s: %w", p.Name(), domain.ErrEngineStarted)
	}
	e.pipelines = append(e.pipelines, p)
	return nil
}

// SetCheckpointDir registers the durability location, creating it if needed.
func (e *Standalone) SetCheckpointDir(dir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return domain.ErrEngineStarted
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("checkpoint dir: %w", err)
	}
	e.checkpointDir = dir
	return nil
}

// Start joins the consumer group and begins folding records through the
// registered pipelines. Start runs at most once; a second call returns
// ErrEngineStarted. On failure no state changes and the engine stays stopped.
func (e *Standalone) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return domain.ErrEngineStarted
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	client, err := e.newConsumerGroup(e.brokers, e.group, cfg)
	if err != nil {
		return fmt.Errorf("join consumer group: %w", err)
	}

	e.client = client
	e.started = true
	e.writeManifest()

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(2)
	go e.consume(runCtx)
	go e.drainErrors()

	e.logger.Info("engine started",
		log.String("topic", e.topic),
		log.String("group", e.group),
		log.Int("pipelines", len(e.pipelines)),
	)
	return nil
}

// Stop leaves the consumer group and waits for the consume loop to exit.
func (e *Standalone) Stop() error {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return nil
	}
	cancel := e.cancel
	client := e.client
	e.mu.Unlock()

	cancel()
	err := client.Close()
	e.wg.Wait()
	return err
}

func (e *Standalone) writeManifest() {
	if e.checkpointDir == "" {
		return
	}
	m := manifest{Topic: e.topic, Group: e.group, StartedAt: time.Now().UTC()}
	b, err := json.Marshal(m)
	if err == nil {
		err = os.WriteFile(filepath.Join(e.checkpointDir, manifestFile), b, 0o640)
	}
	if err != nil {
		e.logger.Warn("write engine manifest", log.Err(err))
	}
}

func (e *Standalone) consume(ctx context.Context) {
	defer e.wg.Done()

	handler := groupHandler{engine: e}
	for {
		if err := e.client.Consume(ctx, []string{e.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			e.logger.Error("consume error", log.Err(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (e *Standalone) drainErrors() {
	defer e.wg.Done()

	for err := range e.client.Errors() {
		e.logger.Error("consumer group error", log.Err(err))
	}
}

func (e *Standalone) apply(raw string) {
	obs, err := domain.ParseRecord(raw)
	if err != nil {
		e.logger.Warn("discarding malformed record", log.Err(err))
		return
	}
	for _, p := range e.pipelines {
		p.Apply(obs)
	}
	metrics.ObservationsProcessed.Inc()
}

// groupHandler folds every claimed message through the engine's pipelines.
type groupHandler struct {
	engine *Standalone
}

// Setup implements sarama.ConsumerGroupHandler.
func (groupHandler) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (h groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		h.engine.apply(string(msg.Value))
		sess.MarkMessage(msg, "")
	}
	return nil
}
