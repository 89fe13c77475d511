// Package resources resolves the bundled runtime and server files the
// launcher supervises, plus the data-directory artifacts it writes.
package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths holds the resolved absolute locations of everything the launcher
// touches on disk. Immutable after Resolve; resolution happens once at
// startup.
type Paths struct {
	Runtime  string // server runtime executable (bundled node)
	Entry    string // entry script (server.js)
	WorkDir  string // directory containing the entry script
	DataDir  string // per-user application data directory
	Database string // server database file handed to the child
	EventLog string // launcher lifecycle log
	Output   string // captured child stdout/stderr
}

// MissingError reports bundled files that do not exist at their resolved
// locations. The launcher refuses to spawn when any are missing.
type MissingError struct {
	Files []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing resources: %s", strings.Join(e.Files, ", "))
}

// runtimeName returns the platform name of the bundled runtime binary.
func runtimeName() string {
	if runtime.GOOS == "windows" {
		return "node.exe"
	}
	return "node"
}

// Resolve locates the bundled runtime and entry script under resourceDir and
// lays out the data-directory artifacts under dataDir. Overrides, when
// non-empty, bypass bundled resolution for the runtime and entry script.
func Resolve(resourceDir, dataDir, runtimeOverride, entryOverride string) Paths {
	rt := runtimeOverride
	if rt == "" {
		rt = resolveResource(resourceDir, filepath.Join("node", runtimeName()))
	}
	entry := entryOverride
	if entry == "" {
		entry = resolveResource(resourceDir, filepath.Join("server", "server.js"))
	}

	return Paths{
		Runtime:  rt,
		Entry:    entry,
		WorkDir:  filepath.Dir(entry),
		DataDir:  dataDir,
		Database: filepath.Join(dataDir, "stacklume.db"),
		EventLog: filepath.Join(dataDir, "stacklume.log"),
		Output:   filepath.Join(dataDir, "server.log"),
	}
}

// resolveResource tries resourceDir/subpath, then resourceDir/resources/subpath.
// Some packagers nest bundled files under a resources/ prefix. Falls back to
// the direct path so the later existence check names it in the error.
func resolveResource(resourceDir, subpath string) string {
	direct := filepath.Join(resourceDir, subpath)
	if _, err := os.Stat(direct); err == nil {
		return direct
	}
	prefixed := filepath.Join(resourceDir, "resources", subpath)
	if _, err := os.Stat(prefixed); err == nil {
		return prefixed
	}
	return direct
}

// Verify checks that the runtime and entry script exist. Returns a
// *MissingError naming every absent file, or nil when both are present.
func (p Paths) Verify() error {
	var missing []string
	if _, err := os.Stat(p.Runtime); err != nil {
		missing = append(missing, p.Runtime)
	}
	if _, err := os.Stat(p.Entry); err != nil {
		missing = append(missing, p.Entry)
	}
	if len(missing) > 0 {
		return &MissingError{Files: missing}
	}
	return nil
}
