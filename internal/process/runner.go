// Package process builds and arms the embedded server process.
package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/SwonDev/Stacklume/internal/resources"
)

// Runner creates the executable command for the supervised server.
// The interface keeps the supervisor decoupled from runtime specifics and
// lets tests substitute short-lived commands.
type Runner interface {
	// BuildCommand returns a ready-to-start command. The command must NOT
	// be started yet.
	BuildCommand(ctx context.Context) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}

// ServerRunner builds the command for the bundled server runtime.
type ServerRunner struct {
	Paths resources.Paths
	Port  int
	Host  string
}

// NewServerRunner creates a runner for the resolved resource paths.
func NewServerRunner(paths resources.Paths, port int) *ServerRunner {
	return &ServerRunner{Paths: paths, Port: port, Host: "127.0.0.1"}
}

// BuildCommand constructs the server command.
//
// The working directory is set to the entry script's containing directory and
// the script is passed as a relative path. Some runtimes resolve a path
// argument against the working directory and misread absolute paths with
// drive-letter prefixes as directories, so the relative form is required.
func (r *ServerRunner) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	if r.Port <= 0 {
		return nil, fmt.Errorf("server runner: port not assigned")
	}

	cmd := exec.CommandContext(ctx, r.Paths.Runtime, filepath.Base(r.Paths.Entry))
	cmd.Dir = r.Paths.WorkDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("PORT=%d", r.Port),
		fmt.Sprintf("HOSTNAME=%s", r.Host),
		"DESKTOP_MODE=true",
		fmt.Sprintf("DATABASE_PATH=%s", r.Paths.Database),
		"NODE_ENV=production",
	)
	return cmd, nil
}

// Name returns the process name used in logs.
func (r *ServerRunner) Name() string {
	return "server"
}
