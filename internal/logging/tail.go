package logging

import (
	"os"
	"strings"
)

// MaxTailLineLength is the maximum length of a single tail line before
// truncation. Server stack traces can produce very long lines; truncating
// keeps diagnostic payloads bounded.
const MaxTailLineLength = 4096

// TailFile returns the last n non-empty-terminated lines of the file at path,
// in original order. A missing or unreadable file yields a single placeholder
// line rather than an error: the tail feeds diagnostics, and "no output" is
// itself diagnostic.
func TailFile(path string, n int) []string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return []string{"(no server output captured)"}
	}
	return TailLines(string(data), n)
}

// TailLines returns the last n lines of text, in original order.
func TailLines(text string, n int) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) > MaxTailLineLength {
			line = line[:MaxTailLineLength] + "...(truncated)"
		}
		out = append(out, line)
	}
	return out
}
