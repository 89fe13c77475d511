package process

import (
	"os"
)

// OpenOutputLog opens the child's captured-output file, truncating any
// previous run's content. Every launch starts with a fresh log so the
// diagnostic tail never mixes sessions.
//
// Callers treat an open failure as non-fatal: output is discarded rather
// than blocking the spawn.
func OpenOutputLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
}
