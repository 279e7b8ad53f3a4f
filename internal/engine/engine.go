// Package engine implements the streaming compute runtime behind the
// supervisor's engine boundary. The supervisor only registers a checkpoint
// location and starts the engine once; everything else here is internal to
// the engine.
package engine

import "context"

// Engine is the compute runtime as the supervisor sees it. SetCheckpointDir
// must be called before Start; Start is irreversible and runs at most once.
type Engine interface {
	SetCheckpointDir(dir string) error
	Start(ctx context.Context) error
}
