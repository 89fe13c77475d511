package launcher

import (
	"log/slog"
	"sync"

	"github.com/SwonDev/Stacklume/internal/history"
	"github.com/SwonDev/Stacklume/internal/logging"
	"github.com/SwonDev/Stacklume/internal/metrics"
	"github.com/SwonDev/Stacklume/internal/supervisor"
)

// terminator is the slice of the supervisor the hook needs.
type terminator interface {
	Session() *supervisor.Session
	Terminate(sess *supervisor.Session) error
}

// LifecycleHook tears the server down when the launcher exits. It is safe
// to call from signal handlers and deferred paths concurrently: the first
// caller performs the termination, everyone else returns immediately.
type LifecycleHook struct {
	Logger   *slog.Logger
	EventLog *logging.EventLog
	Metrics  *metrics.Collector
	History  *history.Store

	sup terminator

	mu    sync.Mutex
	fired bool
}

// NewLifecycleHook creates a hook bound to sup.
func NewLifecycleHook(sup *supervisor.Supervisor, logger *slog.Logger) *LifecycleHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleHook{Logger: logger, sup: sup}
}

// Fire terminates the current session. It never panics: termination runs on
// exit paths where a panic would mask the original cause.
func (h *LifecycleHook) Fire() {
	defer func() {
		if r := recover(); r != nil {
			h.Logger.Error("teardown_panic", "recovered", r)
		}
	}()

	h.mu.Lock()
	if h.fired {
		h.mu.Unlock()
		return
	}
	h.fired = true
	h.mu.Unlock()

	sess := h.sup.Session()
	if sess == nil {
		return
	}

	if h.EventLog != nil {
		h.EventLog.Printf("Terminating server process, pid %d", sess.PID())
	}
	if err := h.sup.Terminate(sess); err != nil {
		h.Logger.Error("teardown_failed", "err", err, "pid", sess.PID())
	} else {
		h.Logger.Info("teardown_complete", "pid", sess.PID())
	}

	if h.Metrics != nil {
		h.Metrics.Terminated()
		h.Metrics.SetSessionState(sess.State().String())
	}
	if h.History != nil {
		if err := h.History.RecordEnd(sess.ID()); err != nil {
			h.Logger.Warn("history_record_failed", "err", err)
		}
	}
}
