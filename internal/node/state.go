package node

// State is the supervisor's lifecycle state. The supervisor starts
// Uninitialized, becomes Initialized on the one-time readiness signal, and
// ends Stopped. Once Initialized it never reverts; Stopped is terminal.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
