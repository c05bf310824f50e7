package server

// RunState is the lifecycle state of an instance.
type RunState int32

const (
	StateCreated RunState = iota
	StateRunning
	StateStopRequested
	StateStopped
)

// String returns the state name used in logs and metrics.
func (s RunState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stop_requested"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Alive reports whether an instance in state s may still accept connections.
func (s RunState) Alive() bool {
	return s == StateRunning || s == StateStopRequested
}
