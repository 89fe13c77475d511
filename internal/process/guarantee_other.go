//go:build !linux && !windows

package process

import (
	"os/exec"
	"syscall"
)

// noopGuarantee covers platforms without a kill-on-parent-death primitive.
// The child still gets its own process group so explicit termination can
// signal the group; cleanup relies solely on the explicit-kill path.
type noopGuarantee struct{}

func newPlatformGuarantee() KillGuarantee {
	return noopGuarantee{}
}

func (noopGuarantee) Name() string { return "none" }

func (noopGuarantee) Configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func (noopGuarantee) Install(_ int) error { return nil }
