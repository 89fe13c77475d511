// Package shell defines the signals the launcher sends to its display
// surface. The shell is a passive renderer: it shows whatever URL or
// diagnostic payload the launcher hands it and reports nothing back.
package shell

import "log/slog"

// FailureKind classifies a fatal launch failure for rendering.
type FailureKind int

const (
	// FailureResourceMissing means the bundled runtime or entry script was
	// absent; no process was spawned.
	FailureResourceMissing FailureKind = iota

	// FailureSpawn means the OS rejected process creation.
	FailureSpawn

	// FailureHealthTimeout means the process spawned but never answered
	// health checks within the budget.
	FailureHealthTimeout
)

// String returns a short identifier for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureResourceMissing:
		return "resource_missing"
	case FailureSpawn:
		return "spawn_failure"
	case FailureHealthTimeout:
		return "health_timeout"
	default:
		return "unknown"
	}
}

// Failure is the structured diagnostic payload handed to the shell. How it
// is rendered (page, panel, plain text) is the shell's concern.
type Failure struct {
	Kind       FailureKind
	Message    string
	LogPath    string   // application log for "see full log" hints
	Port       int      // assigned port, 0 when failure precedes allocation
	OutputTail []string // last captured server output lines, may be empty
}

// Shell receives display signals from the launcher.
//
// Implementations must not block: the launcher calls these from its
// orchestration path and from the health-poll task.
type Shell interface {
	// ShowLoading displays the startup state. Called before any slow work
	// so the user never faces a blank surface.
	ShowLoading()

	// Navigate points the shell at the ready server.
	Navigate(url string)

	// ShowFailure renders a fatal launch failure.
	ShowFailure(f Failure)

	// SetVisible toggles shell visibility.
	SetVisible(visible bool)
}

// LogShell is the headless Shell: it renders every signal as a log line.
// Used when the terminal view is disabled and in tests.
type LogShell struct {
	Logger *slog.Logger
}

// NewLogShell creates a LogShell.
func NewLogShell(logger *slog.Logger) *LogShell {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogShell{Logger: logger}
}

func (s *LogShell) ShowLoading() {
	s.Logger.Info("shell_loading")
}

func (s *LogShell) Navigate(url string) {
	s.Logger.Info("shell_navigate", "url", url)
}

func (s *LogShell) ShowFailure(f Failure) {
	s.Logger.Error("shell_failure",
		"kind", f.Kind.String(),
		"message", f.Message,
		"log_path", f.LogPath,
		"tail_lines", len(f.OutputTail),
	)
}

func (s *LogShell) SetVisible(visible bool) {
	s.Logger.Debug("shell_visibility", "visible", visible)
}
