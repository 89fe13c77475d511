package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SwonDev/Stacklume/internal/process"
	"github.com/SwonDev/Stacklume/internal/sentinel"
)

// ErrAlreadySpawned is returned when Spawn is called after a session already
// exists. At most one session exists per supervisor lifetime; there is no
// re-spawn.
const ErrAlreadySpawned = sentinel.Error("server session already spawned")

// ErrTerminatedDuringSpawn is returned when Terminate ran while the process
// was still being created. The just-started child is killed before Spawn
// returns; the session stays Terminated.
const ErrTerminatedDuringSpawn = sentinel.Error("session terminated during spawn")

const (
	// DefaultStopTimeout bounds the graceful-exit wait during Terminate
	// before escalating to a hard kill.
	DefaultStopTimeout = 5 * time.Second

	// killDrainTimeout is the hard upper bound for waiting on the exit
	// status after the hard kill. If this fires, the OS-level kill
	// guarantee remains the backstop.
	killDrainTimeout = 5 * time.Second
)

// Config holds configuration for creating a Supervisor.
type Config struct {
	Logger      *slog.Logger
	Guarantee   process.KillGuarantee
	OutputPath  string        // captured stdout/stderr file; empty discards output
	StopTimeout time.Duration // zero uses DefaultStopTimeout
}

// Supervisor spawns the server process and guarantees its teardown. It owns
// the process handle and the OS-level kill guarantee exclusively.
type Supervisor struct {
	logger      *slog.Logger
	guarantee   process.KillGuarantee
	outputPath  string
	stopTimeout time.Duration

	mu      sync.Mutex
	session *Session
}

// New creates a Supervisor.
func New(cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	guarantee := cfg.Guarantee
	if guarantee == nil {
		guarantee = process.NewKillGuarantee()
	}
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}
	return &Supervisor{
		logger:      logger,
		guarantee:   guarantee,
		outputPath:  cfg.OutputPath,
		stopTimeout: stopTimeout,
	}
}

// Spawn launches the server process on the assigned port. The command's
// stdout and stderr are redirected to the output log, truncated from any
// previous run; if the log cannot be opened, output is discarded rather
// than blocking the spawn.
//
// A spawn failure is terminal for the session: the session is recorded in
// the Terminated state and no retry occurs.
func (s *Supervisor) Spawn(ctx context.Context, runner process.Runner, port int) (*Session, error) {
	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return nil, ErrAlreadySpawned
	}
	sess := &Session{
		id:    uuid.New(),
		port:  port,
		state: StateSpawning,
	}
	s.session = sess
	s.mu.Unlock()

	cmd, err := runner.BuildCommand(ctx)
	if err != nil {
		sess.setState(StateTerminated)
		return nil, fmt.Errorf("build %s command: %w", runner.Name(), err)
	}

	s.guarantee.Configure(cmd)

	var outFile *os.File
	if s.outputPath != "" {
		outFile, err = process.OpenOutputLog(s.outputPath)
		if err != nil {
			s.logger.Warn("output_log_unavailable", "path", s.outputPath, "error", err)
			outFile = nil
		}
	}
	if outFile != nil {
		cmd.Stdout = outFile
		cmd.Stderr = outFile
	}

	if err := cmd.Start(); err != nil {
		if outFile != nil {
			_ = outFile.Close()
		}
		sess.setState(StateTerminated)
		return nil, fmt.Errorf("start %s process: %w", runner.Name(), err)
	}

	// Single cmd.Wait goroutine: Wait must be called exactly once per
	// started process. The buffered done channel is consumed by Terminate;
	// the closed exited channel is a broadcast for lazy exit detection.
	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		done <- cmd.Wait()
		close(exited)
		if outFile != nil {
			_ = outFile.Close()
		}
	}()

	if !sess.adopt(cmd, done, exited) {
		// Terminate won the race while the process was starting. The
		// session's verdict stands; the child must not outlive it.
		s.logger.Warn("session_terminated_during_spawn", "pid", cmd.Process.Pid)
		_ = signalKill(cmd)
		return nil, ErrTerminatedDuringSpawn
	}

	s.logger.Info("server_started",
		"session_id", sess.id.String(),
		"pid", sess.PID(),
		"port", port,
	)

	return sess, nil
}

// InstallGuarantee attaches the running child to the platform's kill
// primitive. Best-effort: a failure is logged and returned, but callers
// must treat it as non-fatal; the explicit-kill path remains.
func (s *Supervisor) InstallGuarantee(sess *Session) error {
	if sess == nil {
		return nil
	}
	pid := sess.PID()
	if pid == 0 {
		return nil
	}

	if err := s.guarantee.Install(pid); err != nil {
		s.logger.Warn("kill_guarantee_install_failed",
			"guarantee", s.guarantee.Name(),
			"pid", pid,
			"error", err,
		)
		return err
	}

	s.logger.Info("kill_guarantee_installed", "guarantee", s.guarantee.Name(), "pid", pid)
	return nil
}

// Terminate explicitly kills the session's process: terminate signal, then
// a bounded wait, then a hard kill. Idempotent: calling on an already
// terminated or absent session is a no-op, and concurrent calls converge
// because the first caller takes exclusive ownership of the handle.
func (s *Supervisor) Terminate(sess *Session) error {
	if sess == nil {
		return nil
	}

	cmd, done := sess.takeCmd()
	if cmd == nil || cmd.Process == nil {
		sess.setState(StateTerminated)
		return nil
	}
	sess.setState(StateTerminating)
	pid := cmd.Process.Pid

	if err := signalTerm(cmd); err != nil {
		// Process already gone; collect the exit status without blocking
		// indefinitely.
		s.logger.Debug("terminate_signal_failed", "pid", pid, "error", err)
	}

	select {
	case waitErr := <-done:
		sess.setState(StateTerminated)
		s.logger.Info("server_terminated", "pid", pid)
		return ignoreSignalExit(waitErr)
	case <-time.After(s.stopTimeout):
	}

	s.logger.Warn("force_killing_server", "pid", pid, "graceful_timeout", s.stopTimeout.String())
	_ = signalKill(cmd)

	select {
	case waitErr := <-done:
		sess.setState(StateTerminated)
		return ignoreSignalExit(waitErr)
	case <-time.After(killDrainTimeout):
		// The OS-level kill guarantee is the remaining backstop.
		sess.setState(StateTerminated)
		return fmt.Errorf("server pid %d: timed out waiting for exit after kill", pid)
	}
}

// Session returns the current session handle, or nil before Spawn.
func (s *Supervisor) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// ignoreSignalExit filters the expected cmd.Wait error of a process that
// exited on a termination signal.
func ignoreSignalExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
