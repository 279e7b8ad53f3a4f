// Package worker implements the mailbox-backed worker units owned by the
// supervisor. Each worker processes its mailbox one message at a time on its
// own goroutine, so receivers never need locks of their own. Messages from a
// single sender are processed in send order.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// DefaultMailboxSize is the mailbox capacity used when none is given.
const DefaultMailboxSize = 256

// Receiver processes one mailbox message at a time.
type Receiver interface {
	Receive(ctx context.Context, msg interface{})
}

// Starter is an optional Receiver extension run once before the mailbox
// loop. A Start error kills the worker before it processes any message.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is an optional Receiver extension run once after the mailbox loop
// exits, for releasing resources such as queue producers.
type Stopper interface {
	Shutdown()
}

// Handle is the supervisor's reference to one worker: an address for typed
// messages and a bounded-wait termination request.
type Handle struct {
	name     string
	receiver Receiver
	mailbox  chan interface{}
	quit     chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	started  atomic.Bool
	stopOnce sync.Once
	logger   log.Logger
}

// New creates a worker handle. The worker does not run until Start is called.
func New(name string, mailboxSize int, r Receiver, logger log.Logger) *Handle {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}
	return &Handle{
		name:     name,
		receiver: r,
		mailbox:  make(chan interface{}, mailboxSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Name returns the worker's logical name.
func (h *Handle) Name() string { return h.name }

// Start launches the worker's mailbox loop. Calling Start twice is a no-op.
func (h *Handle) Start(ctx context.Context) {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	go h.run(runCtx)
}

// Send enqueues a message for the worker. It returns false once termination
// has been requested; it never waits for the worker to process the message.
func (h *Handle) Send(msg interface{}) bool {
	select {
	case <-h.quit:
		return false
	case h.mailbox <- msg:
		return true
	}
}

// Stop requests termination and waits up to timeout for the worker to
// confirm. It returns true if the worker stopped within the deadline. Stop
// does not retry and does not escalate to a forced kill.
func (h *Handle) Stop(timeout time.Duration) bool {
	h.stopOnce.Do(func() {
		close(h.quit)
		if h.cancel != nil {
			h.cancel()
		}
	})

	if !h.started.Load() {
		return true
	}

	select {
	case <-h.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (h *Handle) run(ctx context.Context) {
	defer close(h.done)

	if s, ok := h.receiver.(Starter); ok {
		if err := s.Start(ctx); err != nil {
			h.logger.Error("worker start failed",
				log.String("worker", h.name),
				log.Err(err),
			)
			return
		}
	}
	if s, ok := h.receiver.(Stopper); ok {
		defer s.Shutdown()
	}

	for {
		select {
		case <-h.quit:
			return
		case msg := <-h.mailbox:
			h.receiver.Receive(ctx, msg)
		}
	}
}
