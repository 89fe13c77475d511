//go:build unix

package supervisor

import (
	"os/exec"
	"syscall"
)

// signalTerm sends SIGTERM to the child's process group, falling back to the
// process itself when the group is unavailable.
func signalTerm(cmd *exec.Cmd) error {
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		return syscall.Kill(-pgid, syscall.SIGTERM)
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}

// signalKill sends SIGKILL to the child's process group, falling back to the
// process itself.
func signalKill(cmd *exec.Cmd) error {
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		return syscall.Kill(-pgid, syscall.SIGKILL)
	}
	return cmd.Process.Kill()
}
