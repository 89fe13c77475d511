package supervisor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/SwonDev/Stacklume/internal/logging"
)

// fakeRunner implements process.Runner for testing.
type fakeRunner struct {
	name     string
	buildFn  func(ctx context.Context) (*exec.Cmd, error)
	buildErr error
}

func (f *fakeRunner) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	if f.buildFn != nil {
		return f.buildFn(ctx)
	}
	return exec.CommandContext(ctx, "echo", "hello"), nil
}

func (f *fakeRunner) Name() string {
	if f.name != "" {
		return f.name
	}
	return "fake"
}

func newSleepRunner(seconds string) *fakeRunner {
	return &fakeRunner{
		buildFn: func(ctx context.Context) (*exec.Cmd, error) {
			return exec.CommandContext(ctx, "sleep", seconds), nil
		},
	}
}

func newSupervisor(t *testing.T, outputPath string) *Supervisor {
	t.Helper()
	return New(Config{
		Logger:      logging.NewLoggerWithWriter(io.Discard, "text", "error"),
		OutputPath:  outputPath,
		StopTimeout: 2 * time.Second,
	})
}

func TestSpawn_Running(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), newSleepRunner("30"), 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Terminate(sess)

	if sess.State() != StateRunning {
		t.Errorf("State = %v, want running", sess.State())
	}
	if sess.PID() == 0 {
		t.Error("PID should be set after spawn")
	}
	if sess.Port() != 3001 {
		t.Errorf("Port = %d, want 3001", sess.Port())
	}
	if sess.ID().String() == "" {
		t.Error("session ID should be set")
	}
}

func TestSpawn_SecondSpawnRefused(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), newSleepRunner("30"), 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Terminate(sess)

	if _, err := s.Spawn(context.Background(), newSleepRunner("30"), 3002); !errors.Is(err, ErrAlreadySpawned) {
		t.Errorf("second Spawn = %v, want ErrAlreadySpawned", err)
	}
}

func TestSpawn_StartFailureIsTerminal(t *testing.T) {
	s := newSupervisor(t, "")
	runner := &fakeRunner{
		buildFn: func(ctx context.Context) (*exec.Cmd, error) {
			return exec.CommandContext(ctx, "/nonexistent/binary/for/sure"), nil
		},
	}

	if _, err := s.Spawn(context.Background(), runner, 3001); err == nil {
		t.Fatal("Spawn should fail for a missing binary")
	}

	sess := s.Session()
	if sess == nil {
		t.Fatal("failed spawn should still record the session")
	}
	if sess.State() != StateTerminated {
		t.Errorf("State = %v, want terminated after spawn failure", sess.State())
	}

	// No retry: the failed session occupies the supervisor lifetime.
	if _, err := s.Spawn(context.Background(), newSleepRunner("1"), 3001); !errors.Is(err, ErrAlreadySpawned) {
		t.Errorf("re-spawn after failure = %v, want ErrAlreadySpawned", err)
	}
}

func TestSpawn_BuildFailure(t *testing.T) {
	s := newSupervisor(t, "")
	if _, err := s.Spawn(context.Background(), &fakeRunner{buildErr: errors.New("boom")}, 3001); err == nil {
		t.Fatal("Spawn should surface the build error")
	}
}

func TestTerminate_Idempotent(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), newSleepRunner("30"), 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	if err := s.Terminate(sess); err != nil {
		t.Errorf("first Terminate = %v, want nil", err)
	}
	if err := s.Terminate(sess); err != nil {
		t.Errorf("second Terminate = %v, want nil (no-op)", err)
	}
	if sess.State() != StateTerminated {
		t.Errorf("State = %v, want terminated", sess.State())
	}
}

func TestTerminate_Concurrent(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), newSleepRunner("30"), 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Terminate(sess)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent Terminate %d = %v, want nil", i, err)
		}
	}
	if sess.State() != StateTerminated {
		t.Errorf("State = %v, want terminated", sess.State())
	}
}

func TestTerminate_NilSession(t *testing.T) {
	s := newSupervisor(t, "")
	if err := s.Terminate(nil); err != nil {
		t.Errorf("Terminate(nil) = %v, want nil", err)
	}
}

func TestTerminate_AfterSelfExit(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), &fakeRunner{}, 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	select {
	case <-sess.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("echo did not exit")
	}

	if err := s.Terminate(sess); err != nil {
		t.Errorf("Terminate after self-exit = %v, want nil", err)
	}
}

func TestState_LazyExitDetection(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), &fakeRunner{}, 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	select {
	case <-sess.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("echo did not exit")
	}

	if sess.State() != StateTerminated {
		t.Errorf("State = %v, want terminated detected lazily", sess.State())
	}
}

func TestSpawn_CapturesOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "server.log")

	s := newSupervisor(t, outPath)
	runner := &fakeRunner{
		buildFn: func(ctx context.Context) (*exec.Cmd, error) {
			return exec.CommandContext(ctx, "sh", "-c", "echo captured output line"), nil
		},
	}

	sess, err := s.Spawn(context.Background(), runner, 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	select {
	case <-sess.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}
	// The wait goroutine closes the file after exit; give it a moment.
	time.Sleep(50 * time.Millisecond)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output log: %v", err)
	}
	if !strings.Contains(string(data), "captured output line") {
		t.Errorf("output log missing child output: %q", string(data))
	}
}

func TestSpawn_OutputLogUnavailable(t *testing.T) {
	// Directory does not exist; open fails, output discarded, spawn proceeds.
	outPath := filepath.Join(t.TempDir(), "missing", "server.log")

	s := newSupervisor(t, outPath)
	sess, err := s.Spawn(context.Background(), &fakeRunner{}, 3001)
	if err != nil {
		t.Fatalf("Spawn should succeed with discarded output: %v", err)
	}
	defer s.Terminate(sess)
}

func TestInstallGuarantee(t *testing.T) {
	s := newSupervisor(t, "")
	sess, err := s.Spawn(context.Background(), newSleepRunner("30"), 3001)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Terminate(sess)

	// On this platform the guarantee is armed at spawn; Install must not fail.
	if err := s.InstallGuarantee(sess); err != nil {
		t.Errorf("InstallGuarantee = %v, want nil", err)
	}
}

func TestInstallGuarantee_NilSession(t *testing.T) {
	s := newSupervisor(t, "")
	if err := s.InstallGuarantee(nil); err != nil {
		t.Errorf("InstallGuarantee(nil) = %v, want nil", err)
	}
}

func TestState_String(t *testing.T) {
	testCases := []struct {
		state    State
		expected string
	}{
		{StateUnstarted, "unstarted"},
		{StateSpawning, "spawning"},
		{StateRunning, "running"},
		{StateTerminating, "terminating"},
		{StateTerminated, "terminated"},
		{State(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.state.String(); got != tc.expected {
				t.Errorf("String() = %q, want %q", got, tc.expected)
			}
		})
	}

	if !StateTerminated.IsTerminal() {
		t.Error("terminated should be terminal")
	}
	if StateRunning.IsTerminal() {
		t.Error("running should not be terminal")
	}
}

// gatedRunner blocks BuildCommand until released, so tests can interleave
// Terminate with a spawn still in flight.
type gatedRunner struct {
	release chan struct{}
	cmd     *exec.Cmd
}

func (g *gatedRunner) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	<-g.release
	g.cmd = exec.CommandContext(ctx, "sleep", "30")
	return g.cmd, nil
}

func (g *gatedRunner) Name() string { return "gated" }

func TestTerminate_DuringSpawn(t *testing.T) {
	s := newSupervisor(t, "")
	runner := &gatedRunner{release: make(chan struct{})}

	spawnDone := make(chan struct{})
	var sess *Session
	var spawnErr error
	go func() {
		defer close(spawnDone)
		sess, spawnErr = s.Spawn(context.Background(), runner, 3001)
	}()

	// The session registers before the command is built.
	deadline := time.Now().Add(5 * time.Second)
	for s.Session() == nil {
		if time.Now().After(deadline) {
			t.Fatal("session never registered")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Terminate(s.Session()); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	if got := s.Session().State(); got != StateTerminated {
		t.Fatalf("State = %v after Terminate, want terminated", got)
	}

	close(runner.release)
	<-spawnDone

	if !errors.Is(spawnErr, ErrTerminatedDuringSpawn) {
		t.Fatalf("Spawn err = %v, want ErrTerminatedDuringSpawn", spawnErr)
	}
	if sess != nil {
		t.Error("Spawn returned a session for a terminated spawn")
	}
	if got := s.Session().State(); got != StateTerminated {
		t.Errorf("State = %v after spawn released, want terminated", got)
	}

	// The just-started child must not survive the verdict.
	deadline = time.Now().Add(5 * time.Second)
	for runner.cmd.Process.Signal(syscall.Signal(0)) == nil {
		if time.Now().After(deadline) {
			t.Fatal("child still running after terminated spawn")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
