package node

import (
	"context"
	"testing"
	"time"

	"github.com/JohnReedLOL/killrweather/internal/worker"
	"github.com/JohnReedLOL/killrweather/pkg/log"
)

// promptReceiver processes messages instantly, so its worker always confirms
// termination.
type promptReceiver struct{}

func (promptReceiver) Receive(ctx context.Context, msg interface{}) {}

// stuckReceiver never finishes its first message, so its worker never
// confirms termination.
type stuckReceiver struct{}

func (stuckReceiver) Receive(ctx context.Context, msg interface{}) {
	select {}
}

func startWorker(t *testing.T, name string, r worker.Receiver) *worker.Handle {
	t.Helper()
	h := worker.New(name, 16, r, log.NewNoopLogger())
	h.Start(context.Background())
	return h
}

func TestCoordinator_AllClean(t *testing.T) {
	workers := []*worker.Handle{
		startWorker(t, "a", promptReceiver{}),
		startWorker(t, "b", promptReceiver{}),
		startWorker(t, "c", promptReceiver{}),
	}

	c := NewCoordinator(time.Second, log.NewNoopLogger())
	outcome := c.Shutdown(workers)

	if !outcome.AllClean {
		t.Errorf("AllClean = false, want true: %v", outcome.Workers)
	}
	if len(outcome.Workers) != 3 {
		t.Fatalf("outcome covers %d workers, want 3", len(outcome.Workers))
	}
	for name, status := range outcome.Workers {
		if status != StatusStopped {
			t.Errorf("worker %q = %v, want Stopped", name, status)
		}
	}
}

func TestCoordinator_TimeoutIsIndependent(t *testing.T) {
	stuck := startWorker(t, "stuck", stuckReceiver{})
	stuck.Send("block")
	prompt := startWorker(t, "prompt", promptReceiver{})

	// Give the stuck worker a moment to start processing.
	time.Sleep(20 * time.Millisecond)

	c := NewCoordinator(50*time.Millisecond, log.NewNoopLogger())
	outcome := c.Shutdown([]*worker.Handle{stuck, prompt})

	if outcome.AllClean {
		t.Error("AllClean = true, want false")
	}
	if got := outcome.Workers["stuck"]; got != StatusTimedOut {
		t.Errorf("stuck worker = %v, want TimedOut", got)
	}
	if got := outcome.Workers["prompt"]; got != StatusStopped {
		t.Errorf("prompt worker = %v, want Stopped", got)
	}
}

func TestCoordinator_Exhaustive(t *testing.T) {
	var workers []*worker.Handle
	workers = append(workers, startWorker(t, "stuck", stuckReceiver{}))
	workers[0].Send("block")
	for _, name := range []string{"w1", "w2", "w3"} {
		workers = append(workers, startWorker(t, name, promptReceiver{}))
	}
	time.Sleep(20 * time.Millisecond)

	c := NewCoordinator(50*time.Millisecond, log.NewNoopLogger())
	outcome := c.Shutdown(workers)

	// Every worker gets a termination request, timeouts notwithstanding.
	if len(outcome.Workers) != 4 {
		t.Fatalf("outcome covers %d workers, want 4", len(outcome.Workers))
	}
	for _, name := range []string{"w1", "w2", "w3"} {
		if got := outcome.Workers[name]; got != StatusStopped {
			t.Errorf("worker %q = %v, want Stopped", name, got)
		}
	}
}

func TestWorkerStatus_String(t *testing.T) {
	tests := []struct {
		status WorkerStatus
		want   string
	}{
		{StatusStopped, "Stopped"},
		{StatusTimedOut, "TimedOut"},
		{WorkerStatus(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("WorkerStatus(%d).String() = %s, want %s", tt.status, got, tt.want)
		}
	}
}
