//go:build windows

package supervisor

import "os/exec"

// Windows has no SIGTERM; both the graceful and forced paths terminate the
// process directly. The Job Object kill guarantee covers descendants.

func signalTerm(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

func signalKill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
