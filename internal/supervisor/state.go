// Package supervisor owns the lifecycle of the single embedded server process.
package supervisor

// State represents the current lifecycle state of the server session.
type State int

const (
	// StateUnstarted is the initial state before any spawn attempt.
	StateUnstarted State = iota

	// StateSpawning indicates the process is being created.
	StateSpawning

	// StateRunning indicates the OS process exists. Readiness is tracked
	// separately by the launcher; Running only means there is a PID.
	StateRunning

	// StateTerminating indicates an explicit termination is in progress.
	StateTerminating

	// StateTerminated is the absorbing terminal state. No re-spawn.
	StateTerminated
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the state is the absorbing terminal state.
func (s State) IsTerminal() bool {
	return s == StateTerminated
}
