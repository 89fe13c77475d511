//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// pdeathsigGuarantee uses the Linux parent-death signal: the kernel delivers
// SIGKILL to the child the moment the launcher dies, for any reason. Setpgid
// additionally places the child in its own process group so explicit
// termination can signal the whole group.
type pdeathsigGuarantee struct{}

func newPlatformGuarantee() KillGuarantee {
	return pdeathsigGuarantee{}
}

func (pdeathsigGuarantee) Name() string { return "pdeathsig" }

func (pdeathsigGuarantee) Configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// Install is a no-op: Pdeathsig is armed by the kernel at spawn time.
func (pdeathsigGuarantee) Install(_ int) error { return nil }
