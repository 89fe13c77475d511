// Package launcher drives one launch attempt end to end: resolve resources,
// pick a port, spawn the server, and gate on its health endpoint. It owns the
// one-shot outcome contract and the teardown hook for process exit.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SwonDev/Stacklume/internal/health"
	"github.com/SwonDev/Stacklume/internal/history"
	"github.com/SwonDev/Stacklume/internal/logging"
	"github.com/SwonDev/Stacklume/internal/metrics"
	"github.com/SwonDev/Stacklume/internal/ports"
	"github.com/SwonDev/Stacklume/internal/process"
	"github.com/SwonDev/Stacklume/internal/resources"
	"github.com/SwonDev/Stacklume/internal/shell"
	"github.com/SwonDev/Stacklume/internal/supervisor"
)

// outputTailLines is how many trailing server-output lines a failure
// diagnostic carries.
const outputTailLines = 20

// spawner is the slice of the supervisor the launcher needs.
type spawner interface {
	Spawn(ctx context.Context, runner process.Runner, port int) (*supervisor.Session, error)
	InstallGuarantee(sess *supervisor.Session) error
}

// healthWaiter is the slice of the health poller the launcher needs.
type healthWaiter interface {
	Wait(url string) bool
	Latency() *health.LatencyDigest
}

// portPicker is the slice of the port allocator the launcher needs.
type portPicker interface {
	Pick() int
}

// Config assembles a Launcher. Metrics and History are optional; nil
// disables them.
type Config struct {
	Logger     *slog.Logger
	Shell      shell.Shell
	Supervisor *supervisor.Supervisor
	Allocator  *ports.Allocator
	Poller     *health.Poller
	Paths      resources.Paths
	EventLog   *logging.EventLog
	Metrics    *metrics.Collector
	History    *history.Store
	Version    string
}

// Launcher runs a single launch attempt and delivers exactly one Outcome.
type Launcher struct {
	logger   *slog.Logger
	sh       shell.Shell
	sup      spawner
	picker   portPicker
	waiter   healthWaiter
	paths    resources.Paths
	eventLog *logging.EventLog
	metrics  *metrics.Collector
	history  *history.Store
	version  string

	once      sync.Once
	outcomeCh chan Outcome

	mu   sync.Mutex
	port int
}

// New creates a Launcher from cfg.
func New(cfg Config) *Launcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sh := cfg.Shell
	if sh == nil {
		sh = shell.NewLogShell(logger)
	}
	return &Launcher{
		logger:    logger,
		sh:        sh,
		sup:       cfg.Supervisor,
		picker:    cfg.Allocator,
		waiter:    cfg.Poller,
		paths:     cfg.Paths,
		eventLog:  cfg.EventLog,
		metrics:   cfg.Metrics,
		history:   cfg.History,
		version:   cfg.Version,
		outcomeCh: make(chan Outcome, 1),
	}
}

// Outcome returns the channel carrying the single launch outcome. The
// channel is buffered so Run never blocks on a slow consumer.
func (l *Launcher) Outcome() <-chan Outcome {
	return l.outcomeCh
}

// Port returns the allocated port, or 0 before allocation.
func (l *Launcher) Port() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port
}

// Run executes the launch sequence. It shows the loading state immediately,
// then resolves resources, allocates a port, spawns the server, and blocks
// in the health poll until the server is ready or the attempt budget runs
// out. It always emits exactly one Outcome before returning.
func (l *Launcher) Run(ctx context.Context) {
	start := time.Now()

	l.sh.ShowLoading()
	if l.eventLog != nil {
		l.eventLog.Init(l.version)
		l.eventLog.Printf("Launch sequence started")
	}

	if err := l.paths.Verify(); err != nil {
		var missing *resources.MissingError
		if errors.As(err, &missing) {
			l.event("Missing resources: %v", missing.Files)
		}
		l.logger.Error("resources_missing", "err", err)
		l.emit(Outcome{Failure: &shell.Failure{
			Kind:    shell.FailureResourceMissing,
			Message: err.Error(),
			LogPath: l.logPath(),
		}})
		return
	}
	l.event("Resources verified: runtime=%s entry=%s", l.paths.Runtime, l.paths.Entry)

	port := l.picker.Pick()
	l.mu.Lock()
	l.port = port
	l.mu.Unlock()
	if l.metrics != nil {
		l.metrics.SetAssignedPort(port)
	}
	l.event("Assigned port %d", port)

	runner := process.NewServerRunner(l.paths, port)
	sess, err := l.sup.Spawn(ctx, runner, port)
	if err != nil {
		l.event("Server start failed: %v", err)
		if l.metrics != nil {
			l.metrics.SpawnFailed()
		}
		l.emit(Outcome{Failure: &shell.Failure{
			Kind:       shell.FailureSpawn,
			Message:    fmt.Sprintf("failed to start server: %v", err),
			LogPath:    l.logPath(),
			Port:       port,
			OutputTail: logging.TailFile(l.paths.Output, outputTailLines),
		}})
		return
	}

	if l.metrics != nil {
		l.metrics.SpawnSucceeded()
		l.metrics.SetSessionState(sess.State().String())
	}
	if l.history != nil {
		if herr := l.history.RecordStart(sess.ID(), port, sess.PID()); herr != nil {
			l.logger.Warn("history_record_failed", "err", herr)
		}
	}
	l.event("Server process started, pid %d", sess.PID())

	// Failure to install the guarantee is logged by the supervisor; the
	// launch continues without it.
	_ = l.sup.InstallGuarantee(sess)

	url := fmt.Sprintf("http://127.0.0.1:%d", port)
	if l.waiter.Wait(url + "/api/health") {
		l.recordLatency(start)
		l.event("Server healthy at %s", url)
		l.recordHistory(sess, "ready", "")
		l.emit(Outcome{URL: url})
		return
	}

	// The process is left running for post-mortem inspection. Teardown
	// still happens through the lifecycle hook on exit.
	tail := logging.TailFile(l.paths.Output, outputTailLines)
	l.event("Server never became healthy on port %d", port)
	l.recordHistory(sess, "health_timeout", "server did not become healthy within the startup window")
	l.emit(Outcome{Failure: &shell.Failure{
		Kind:       shell.FailureHealthTimeout,
		Message:    "server did not become healthy within the startup window",
		LogPath:    l.logPath(),
		Port:       port,
		OutputTail: tail,
	}})
}

// emit delivers the outcome exactly once: later calls are ignored. The
// winning outcome drives the shell signal, the metrics, and the channel.
func (l *Launcher) emit(o Outcome) {
	l.once.Do(func() {
		l.logger.Info("launch_outcome", "kind", o.Kind(), "url", o.URL)
		if l.metrics != nil {
			l.metrics.RecordOutcome(o.Kind())
		}
		// Whatever the verdict, there is now something to show.
		l.sh.SetVisible(true)
		if o.Failure != nil {
			l.sh.ShowFailure(*o.Failure)
		} else {
			l.sh.Navigate(o.URL)
		}
		l.outcomeCh <- o
	})
}

func (l *Launcher) event(format string, args ...any) {
	if l.eventLog != nil {
		l.eventLog.Printf(format, args...)
	}
}

func (l *Launcher) logPath() string {
	if l.eventLog == nil {
		return ""
	}
	return l.eventLog.Path()
}

func (l *Launcher) recordHistory(sess *supervisor.Session, outcome, diagnostic string) {
	if l.history == nil {
		return
	}
	if err := l.history.RecordOutcome(sess.ID(), outcome, diagnostic); err != nil {
		l.logger.Warn("history_record_failed", "err", err)
	}
}

func (l *Launcher) recordLatency(start time.Time) {
	digest := l.waiter.Latency()
	if digest != nil && digest.Count() > 0 {
		l.logger.Info("readiness_latency",
			"probes", digest.Count(),
			"p50", digest.Quantile(0.5),
			"p95", digest.Quantile(0.95),
			"p99", digest.Quantile(0.99),
			"total", time.Since(start),
		)
	}
	if l.metrics == nil {
		return
	}
	l.metrics.RecordReadiness(time.Since(start))
	if digest == nil || digest.Count() == 0 {
		return
	}
	for _, q := range []struct {
		label string
		value float64
	}{
		{"0.5", 0.5},
		{"0.95", 0.95},
		{"0.99", 0.99},
	} {
		l.metrics.RecordProbeRTT(q.label, digest.Quantile(q.value))
	}
}
