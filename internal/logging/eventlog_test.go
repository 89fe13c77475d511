package logging

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func newTestEventLog(t *testing.T) *EventLog {
	t.Helper()
	return NewEventLog(filepath.Join(t.TempDir(), "stacklume.log"))
}

func readLog(t *testing.T, el *EventLog) string {
	t.Helper()
	data, err := os.ReadFile(el.Path())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestEventLog(t *testing.T) {
	el := newTestEventLog(t)
	el.Init("0.1.0")
	el.Printf("port assigned: %d", 3001)
	el.Printf("server started (pid %d)", 1234)

	content := readLog(t, el)

	if !strings.HasPrefix(content, "=== Stacklume Log ===\nVersion: 0.1.0\n") {
		t.Errorf("missing header, got: %q", content)
	}
	if !strings.Contains(content, "port assigned: 3001") {
		t.Error("missing first event line")
	}
	if !strings.Contains(content, "server started (pid 1234)") {
		t.Error("missing second event line")
	}
}

func TestEventLog_InitTruncates(t *testing.T) {
	el := newTestEventLog(t)
	el.Init("0.1.0")
	el.Printf("stale event")
	el.Init("0.2.0")

	content := readLog(t, el)
	if strings.Contains(content, "stale event") {
		t.Error("Init should truncate the previous log")
	}
	if !strings.Contains(content, "0.2.0") {
		t.Error("Init should write the new header")
	}
}

func TestEventLog_LineFormat(t *testing.T) {
	el := newTestEventLog(t)
	el.Init("0.1.0")
	el.Printf("hello")

	lines := strings.Split(strings.TrimRight(readLog(t, el), "\n"), "\n")
	last := lines[len(lines)-1]

	// HH:MM:SS.mmm prefix, then the event text.
	if ok, _ := regexp.MatchString(`^\d{2}:\d{2}:\d{2}\.\d{3} hello$`, last); !ok {
		t.Errorf("line %q does not carry a timestamp prefix", last)
	}
}

func TestEventLog_PrintfWithoutInit(t *testing.T) {
	el := newTestEventLog(t)
	el.Printf("created on demand")

	if !strings.Contains(readLog(t, el), "created on demand") {
		t.Error("Printf should create the file when Init never ran")
	}
}

func TestEventLog_WriteErrorsSwallowed(t *testing.T) {
	// A path inside a missing directory cannot be created. Neither call
	// may panic or surface an error.
	el := NewEventLog(filepath.Join(t.TempDir(), "missing", "stacklume.log"))
	el.Init("0.1.0")
	el.Printf("dropped")
}
