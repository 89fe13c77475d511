// Package main provides the stacklume desktop launcher entry point.
//
// stacklume launches the bundled Node.js server, gates on its health
// endpoint, and guarantees the server is torn down when the launcher exits,
// no matter how ready the server got.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/SwonDev/Stacklume/internal/applock"
	"github.com/SwonDev/Stacklume/internal/config"
	"github.com/SwonDev/Stacklume/internal/health"
	"github.com/SwonDev/Stacklume/internal/history"
	"github.com/SwonDev/Stacklume/internal/launcher"
	"github.com/SwonDev/Stacklume/internal/logging"
	"github.com/SwonDev/Stacklume/internal/metrics"
	"github.com/SwonDev/Stacklume/internal/ports"
	"github.com/SwonDev/Stacklume/internal/resources"
	"github.com/SwonDev/Stacklume/internal/shell"
	"github.com/SwonDev/Stacklume/internal/supervisor"
	"github.com/SwonDev/Stacklume/internal/tui"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/stacklume
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("stacklume %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}
	if cfg.ShowVersion {
		fmt.Printf("stacklume %s\n", version)
		return 0
	}

	// When the TUI is enabled, suppress logs to avoid interfering with
	// the terminal rendering.
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	logger.Info("starting",
		"version", version,
		"resources", cfg.ResourceDir,
		"data_dir", cfg.DataDir,
		"metrics_addr", cfg.MetricsAddr,
	)

	// Single instance per data directory. Two launchers supervising the
	// same database corrupts it.
	lock, err := applock.Acquire(cfg.DataDir, logger)
	if err != nil {
		if errors.Is(err, applock.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, "stacklume is already running")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error acquiring instance lock: %v\n", err)
		return 1
	}
	defer lock.Release()

	paths := resources.Resolve(cfg.ResourceDir, cfg.DataDir, cfg.RuntimeOverride, cfg.EntryOverride)
	eventLog := logging.NewEventLog(paths.EventLog)

	var collector *metrics.Collector
	var metricsSrv *metrics.Server
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(version)
		metricsSrv = metrics.NewServer(cfg.MetricsAddr, logger)
		if err := metricsSrv.Start(); err != nil {
			logger.Error("metrics_server_failed", "err", err)
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(ctx)
		}()
	}

	var store *history.Store
	if cfg.HistoryEnabled {
		store, err = history.Open(filepath.Join(cfg.DataDir, "history.db"))
		if err != nil {
			// The registry is diagnostics, not a launch dependency.
			logger.Warn("history_unavailable", "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	sup := supervisor.New(supervisor.Config{
		Logger:      logger,
		OutputPath:  paths.Output,
		StopTimeout: cfg.StopTimeout,
	})

	hook := launcher.NewLifecycleHook(sup, logger)
	hook.EventLog = eventLog
	hook.Metrics = collector
	hook.History = store
	// The hook is the teardown backstop for every exit path below.
	defer hook.Fire()

	poller := health.NewPoller(logger)
	poller.Interval = cfg.HealthInterval
	poller.Attempts = cfg.HealthAttempts
	if collector != nil {
		poller.OnProbe = collector.HealthProbe
	}

	launcherCfg := launcher.Config{
		Logger:     logger,
		Supervisor: sup,
		Allocator:  ports.NewAllocator(logger),
		Poller:     poller,
		Paths:      paths,
		EventLog:   eventLog,
		Metrics:    collector,
		History:    store,
		Version:    version,
	}

	if cfg.TUIEnabled {
		return runTUI(launcherCfg, cfg, hook)
	}
	return runHeadless(launcherCfg, logger, sup, hook)
}

// runTUI drives the launch with the terminal surface. The program owns the
// foreground; quitting it is the teardown trigger.
func runTUI(launcherCfg launcher.Config, cfg *config.Config, hook *launcher.LifecycleHook) int {
	model := tui.New(tui.Config{
		Version:     version,
		MetricsAddr: cfg.MetricsAddr,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	launcherCfg.Shell = tui.NewProgramShell(program)

	l := launcher.New(launcherCfg)
	go l.Run(context.Background())

	_, err := program.Run()

	// The user quit the surface: tear the server down before reporting.
	hook.Fire()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Terminal error: %v\n", err)
		return 1
	}

	// A launch still in flight when the user quits is not a failure.
	select {
	case o := <-l.Outcome():
		if !o.Ready() {
			return 1
		}
	default:
	}
	return 0
}

// runHeadless drives the launch without a terminal surface. A ready server
// runs until SIGINT/SIGTERM or its own exit.
func runHeadless(launcherCfg launcher.Config, logger *slog.Logger, sup *supervisor.Supervisor, hook *launcher.LifecycleHook) int {
	launcherCfg.Shell = shell.NewLogShell(logger)
	l := launcher.New(launcherCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Run(gctx)
		return nil
	})

	var outcome launcher.Outcome
	select {
	case <-ctx.Done():
		// Signal during startup. The deferred hook tears the server
		// down; the launch goroutine dies with the process.
		logger.Info("shutdown_signal")
		return 0
	case outcome = <-l.Outcome():
	}

	if !outcome.Ready() {
		_ = g.Wait()
		logger.Error("launch_failed", "kind", outcome.Kind())
		return 1
	}

	logger.Info("serving", "url", outcome.URL)

	sess := sup.Session()
	g.Go(func() error {
		select {
		case <-ctx.Done():
			logger.Info("shutdown_signal")
		case <-sess.Exited():
			logger.Warn("server_exited")
		}
		return nil
	})
	_ = g.Wait()

	hook.Fire()
	return 0
}
