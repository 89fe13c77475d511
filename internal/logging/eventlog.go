package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// EventLog is the human-readable application log: one line per lifecycle
// event, appended to a file in the app data directory. It exists so a user
// can diagnose a failed launch without structured-log tooling.
//
// The file is truncated once at startup (Init) and appended to afterwards.
// Write errors are swallowed: the log must never block or fail the launch.
type EventLog struct {
	mu   sync.Mutex
	path string
}

// NewEventLog creates an event log that writes to path.
func NewEventLog(path string) *EventLog {
	return &EventLog{path: path}
}

// Init truncates the previous log and writes the session header.
func (e *EventLog) Init(version string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	header := fmt.Sprintf("=== Stacklume Log ===\nVersion: %s\n", version)
	_ = os.WriteFile(e.path, []byte(header), 0o644)
}

// Printf appends one formatted, timestamped line to the log.
func (e *EventLog) Printf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(f, "%s %s\n", time.Now().Format("15:04:05.000"), line)
}

// Path returns the log file path, for inclusion in diagnostic payloads.
func (e *EventLog) Path() string {
	return e.path
}
