package node

import (
	"sync"
	"time"

	"github.com/JohnReedLOL/killrweather/internal/metrics"
	"github.com/JohnReedLOL/killrweather/internal/worker"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// WorkerStatus is the outcome of one worker's termination request.
type WorkerStatus int

const (
	StatusStopped WorkerStatus = iota
	StatusTimedOut
)

// String returns a human-readable representation of the status.
func (s WorkerStatus) String() string {
	switch s {
	case StatusStopped:
		return "Stopped"
	case StatusTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// ShutdownOutcome reports, per worker, whether it confirmed termination in
// time, plus the aggregate.
type ShutdownOutcome struct {
	Workers  map[string]WorkerStatus
	AllClean bool
}

// Coordinator performs bounded graceful shutdown: every worker gets a
// termination request and an independent wait of up to the per-worker
// timeout. Timeouts are recorded, never retried or escalated. Shutdown runs
// at most once per process lifetime.
type Coordinator struct {
	timeout time.Duration
	logger  log.Logger
}

// NewCoordinator creates a coordinator with the given per-worker timeout.
func NewCoordinator(perWorkerTimeout time.Duration, logger log.Logger) *Coordinator {
	return &Coordinator{timeout: perWorkerTimeout, logger: logger}
}

// Shutdown stops all workers concurrently and blocks until every wait
// resolves. One worker timing out does not shorten or extend another's wait,
// and every worker is asked to stop regardless of its siblings' outcomes.
func (c *Coordinator) Shutdown(workers []*worker.Handle) ShutdownOutcome {
	outcome := ShutdownOutcome{
		Workers:  make(map[string]WorkerStatus, len(workers)),
		AllClean: true,
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, h := range workers {
		wg.Add(1)
		go func(h *worker.Handle) {
			defer wg.Done()
			stopped := h.Stop(c.timeout)

			mu.Lock()
			defer mu.Unlock()
			if stopped {
				outcome.Workers[h.Name()] = StatusStopped
				return
			}
			outcome.Workers[h.Name()] = StatusTimedOut
			outcome.AllClean = false
			metrics.ShutdownTimeouts.Inc()
			c.logger.Warn("worker termination timed out",
				log.String("worker", h.Name()),
				log.Duration("timeout", c.timeout),
			)
		}(h)
	}
	wg.Wait()

	c.logger.Info("shutdown complete",
		log.Int("workers", len(workers)),
		log.Bool("all_clean", outcome.AllClean),
	)
	return outcome
}
