package domain

import "errors"

// Sentinel errors shared across the node.
var (
	// ErrNotInitialized is returned when a request arrives before the
	// readiness handshake completed. Routing before initialization is a
	// contract violation, not a degraded-service mode.
	ErrNotInitialized = errors.New("supervisor not initialized")

	// ErrUnknownRequest is returned for a request kind outside the closed
	// routing set.
	ErrUnknownRequest = errors.New("unknown request kind")

	// ErrEngineStarted is returned when a pipeline is registered, or Start
	// is called again, after the engine already started. Engine start is
	// irreversible.
	ErrEngineStarted = errors.New("engine already started")

	// ErrStopped is returned when a message is offered to a supervisor or
	// worker that already shut down.
	ErrStopped = errors.New("supervisor stopped")
)
