package node

import "github.com/google/uuid"

// ReadinessSignal is sent by the ingest worker, exactly once, after it has
// defined its input stream. It gates the supervisor's transition to serving
// state.
type ReadinessSignal struct{}

// TerminationSignal asks the supervisor to stop every worker and exit. It
// may arrive in either lifecycle state.
type TerminationSignal struct{}

// Observer receives supervisor lifecycle notifications. Callbacks run on
// the supervisor's goroutine and must not block.
type Observer interface {
	// OnInitialized fires once, after the startup sequence completed.
	OnInitialized(id uuid.UUID)

	// OnStopped fires once, after every worker resolved its termination
	// request.
	OnStopped(id uuid.UUID, outcome ShutdownOutcome)
}
