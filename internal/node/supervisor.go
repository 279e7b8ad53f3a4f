// Package node implements the weather node's supervisor: it owns the ingest
// and compute workers, sequences the one-time initialization handshake with
// the compute engine, routes typed requests to the right worker, and
// performs bounded graceful shutdown.
//
// The supervisor processes its mailbox one message at a time on a single
// goroutine, so lifecycle state and the routing table need no locks. A
// termination signal that arrives while initialization is running queues
// behind it: initialize runs to completion, shutdown follows immediately.
package node

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JohnReedLOL/killrweather/internal/domain"
	"github.com/JohnReedLOL/killrweather/internal/engine"
	"github.com/JohnReedLOL/killrweather/internal/ingest"
	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/internal/worker"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// DefaultShutdownTimeout is the per-worker termination wait used when the
// configuration does not set one.
const DefaultShutdownTimeout = 5 * time.Second

// Logical worker names.
const (
	WorkerIngest        = "ingest"
	WorkerTemperature   = "temperature"
	WorkerPrecipitation = "precipitation"
	WorkerStation       = "station"
)

const mailboxSize = 256

// Config carries the supervisor's own settings.
type Config struct {
	// CheckpointDir is registered with the engine before it starts. Opaque
	// to the supervisor.
	CheckpointDir string

	// ShutdownTimeout is the bounded wait per worker during shutdown.
	ShutdownTimeout time.Duration
}

// Feeder streams raw records to the ingest worker. Run is kicked off as the
// last step of initialization and abandoned via context at shutdown.
type Feeder interface {
	Run(ctx context.Context) error
}

// Deps are the collaborators the supervisor composes at construction.
type Deps struct {
	// Engine is the compute runtime started exactly once during
	// initialization.
	Engine engine.Engine

	// Connect establishes the ingest worker's queue producer.
	Connect ingest.ConnectFunc

	// NewFeeder builds the feeder once the ingest worker's address exists.
	NewFeeder func(target ingest.Target) Feeder

	// Receivers for the three compute workers.
	Temperature   worker.Receiver
	Precipitation worker.Receiver
	Station       worker.Receiver

	Logger    log.Logger
	Observers []Observer
}

// Supervisor owns the four workers and the lifecycle state machine.
type Supervisor struct {
	id        uuid.UUID
	cfg       Config
	engine    engine.Engine
	feeder    Feeder
	workers   []*worker.Handle
	router    *Router
	coord     *Coordinator
	observers []Observer
	logger    log.Logger

	mailbox chan interface{}
	done    chan struct{}
	start   sync.Once

	// Owned by the run goroutine.
	state      State
	feedCancel context.CancelFunc
	runErr     error
	outcome    ShutdownOutcome
}

// New constructs the supervisor and all four worker handles. Workers do not
// run until Start is called.
func New(cfg Config, deps Deps) *Supervisor {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	s := &Supervisor{
		id:        uuid.New(),
		cfg:       cfg,
		engine:    deps.Engine,
		observers: deps.Observers,
		logger:    logger,
		mailbox:   make(chan interface{}, mailboxSize),
		done:      make(chan struct{}),
		state:     StateUninitialized,
	}

	ingestRecv := ingest.NewReceiver(deps.Connect, func() {
		_ = s.Notify(ReadinessSignal{})
	}, logger)

	ingestWorker := worker.New(WorkerIngest, mailboxSize, ingestRecv, logger)
	temperature := worker.New(WorkerTemperature, mailboxSize, deps.Temperature, logger)
	precipitation := worker.New(WorkerPrecipitation, mailboxSize, deps.Precipitation, logger)
	station := worker.New(WorkerStation, mailboxSize, deps.Station, logger)

	s.workers = []*worker.Handle{ingestWorker, temperature, precipitation, station}
	s.router = NewRouter(map[domain.Kind]*worker.Handle{
		domain.KindTemperature:   temperature,
		domain.KindPrecipitation: precipitation,
		domain.KindStation:       station,
	})
	s.coord = NewCoordinator(cfg.ShutdownTimeout, logger)
	s.feeder = deps.NewFeeder(ingestWorker)

	return s
}

// ID returns the supervisor's identity.
func (s *Supervisor) ID() uuid.UUID { return s.id }

// Start launches the workers and the supervisor's processing loop. The
// ingest worker starts last so its readiness signal finds the loop running.
func (s *Supervisor) Start(ctx context.Context) {
	s.start.Do(func() {
		for _, h := range s.workers[1:] {
			h.Start(ctx)
		}
		go s.run(ctx)
		s.workers[0].Start(ctx)

		s.logger.Info("supervisor started",
			log.String("supervisor", s.id.String()),
			log.Int("workers", len(s.workers)),
		)
	})
}

// Notify delivers a lifecycle event to the supervisor.
func (s *Supervisor) Notify(event interface{}) error {
	return s.offer(event)
}

// Dispatch offers a request for routing. Requests are processed in arrival
// order; one received before initialization is rejected loudly, never
// forwarded.
func (s *Supervisor) Dispatch(req domain.Request) error {
	return s.offer(req)
}

func (s *Supervisor) offer(msg interface{}) error {
	select {
	case <-s.done:
		return domain.ErrStopped
	case s.mailbox <- msg:
		return nil
	}
}

// Done is closed once shutdown completed.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

// Err reports the fatal error, if any, that terminated the supervisor.
// Valid after Done is closed.
func (s *Supervisor) Err() error { return s.runErr }

// Outcome reports the shutdown result. Valid after Done is closed.
func (s *Supervisor) Outcome() ShutdownOutcome { return s.outcome }

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.shutdown("context canceled")
			return

		case msg := <-s.mailbox:
			switch m := msg.(type) {
			case ReadinessSignal:
				if !s.handleReadiness(ctx) {
					s.shutdown("initialization failed")
					return
				}
			case TerminationSignal:
				s.shutdown("termination signal")
				return
			case domain.Request:
				s.handleRequest(m)
			default:
				s.logger.Warn("unhandled message", log.Any("message", msg))
			}
		}
	}
}

// handleReadiness reacts to the readiness signal according to the current
// state. It reports false only when initialization failed, which is fatal.
func (s *Supervisor) handleReadiness(ctx context.Context) bool {
	switch s.state {
	case StateInitialized:
		// At-most-once: the side effects of initialization must not rerun.
		s.logger.Warn("duplicate readiness signal ignored")
		return true
	case StateUninitialized:
		if err := s.initialize(ctx); err != nil {
			s.runErr = err
			s.logger.Error("initialization failed, supervisor terminating", log.Err(err))
			return false
		}
		return true
	default:
		return true
	}
}

// initialize performs the startup sequence: checkpoint registration, engine
// start, feeder kickoff, state flip, observer notification. If the engine
// fails to start, no transition happens and the error is fatal.
func (s *Supervisor) initialize(ctx context.Context) error {
	s.logger.Info("readiness signal received, initializing",
		log.String("supervisor", s.id.String()),
	)

	if err := s.engine.SetCheckpointDir(s.cfg.CheckpointDir); err != nil {
		return err
	}
	if err := s.engine.Start(ctx); err != nil {
		return err
	}

	feedCtx, cancel := context.WithCancel(ctx)
	s.feedCancel = cancel
	go func() {
		err := s.feeder.Run(feedCtx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, domain.ErrStopped) {
			s.logger.Error("feeder failed", log.Err(err))
		}
	}()

	s.state = StateInitialized
	s.logger.Info("initialized", log.String("supervisor", s.id.String()))
	for _, o := range s.observers {
		o.OnInitialized(s.id)
	}
	return nil
}

func (s *Supervisor) handleRequest(req domain.Request) {
	if s.state != StateInitialized {
		metrics.RequestsRejected.Inc()
		s.logger.Error("request rejected before initialization",
			log.String("kind", string(req.RequestKind())),
			log.Err(domain.ErrNotInitialized),
		)
		return
	}
	if err := s.router.Route(req); err != nil {
		s.logger.Error("routing failed", log.Err(err))
	}
}

// shutdown abandons any feed in progress, stops every worker with a bounded
// wait, and notifies observers. Blocking the processing loop here is fine:
// shutdown is terminal.
func (s *Supervisor) shutdown(reason string) {
	s.logger.Info("shutting down",
		log.String("supervisor", s.id.String()),
		log.String("reason", reason),
	)

	if s.feedCancel != nil {
		s.feedCancel()
	}
	s.outcome = s.coord.Shutdown(s.workers)
	s.state = StateStopped
	for _, o := range s.observers {
		o.OnStopped(s.id, s.outcome)
	}
}
