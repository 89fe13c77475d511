package supervisor

import (
	"os/exec"
	"sync"

	"github.com/google/uuid"
)

// Session is the single live instance of the supervised server process.
//
// The session handle is the only shared mutable state between the launcher,
// the health poll task, and the lifecycle hook. All accesses are short
// critical sections under mu; no lock is held across a blocking call.
type Session struct {
	id   uuid.UUID
	port int

	mu       sync.Mutex
	cmd      *exec.Cmd
	pid      int
	state    State
	waitDone <-chan error    // receives the cmd.Wait result exactly once
	exited   <-chan struct{} // closed when the process exits
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Port returns the port assigned at spawn. Set once, never changes.
func (s *Session) Port() int {
	return s.port
}

// PID returns the child process ID, or 0 if the spawn never completed.
func (s *Session) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// State returns the current lifecycle state. A self-exited process is
// detected lazily here: the session is not actively monitored beyond the
// termination call.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning && s.exited != nil {
		select {
		case <-s.exited:
			s.state = StateTerminated
		default:
		}
	}
	return s.state
}

// setState transitions the session state. Terminated is absorbing.
func (s *Session) setState(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTerminated {
		return
	}
	s.state = next
}

// Exited returns a channel closed when the process exits, or nil if no
// process was ever started. Safe to select on from any goroutine.
func (s *Session) Exited() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited
}

// takeCmd removes and returns the process handle, leaving the session
// without one. Exclusive takeover is what makes concurrent termination
// attempts converge on a single kill. When no handle exists yet the session
// is marked Terminated in the same critical section, so a spawn still in
// flight observes the tombstone instead of resurrecting the session.
func (s *Session) takeCmd() (*exec.Cmd, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd, done := s.cmd, s.waitDone
	s.cmd = nil
	s.waitDone = nil
	if cmd == nil {
		s.state = StateTerminated
	}
	return cmd, done
}

// adopt installs the started process handle and moves the session to
// Running. Returns false when the session was terminated while the process
// was starting; the caller then owns killing the just-started child. The
// pid is recorded either way so logs can name the process.
func (s *Session) adopt(cmd *exec.Cmd, done <-chan error, exited <-chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = cmd.Process.Pid
	s.exited = exited
	if s.state == StateTerminated {
		return false
	}
	s.cmd = cmd
	s.waitDone = done
	s.state = StateRunning
	return true
}
