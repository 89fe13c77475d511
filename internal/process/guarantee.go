package process

import "os/exec"

// KillGuarantee arms an OS-level cleanup primitive so the child cannot
// outlive the launcher, no matter how the launcher dies, including a crash,
// a forced kill, or installer-driven termination.
//
// The supervisor always calls through this interface; platform selection
// happens once at construction, never in business logic.
type KillGuarantee interface {
	// Name identifies the primitive in logs ("job-object", "pdeathsig", "none").
	Name() string

	// Configure sets spawn-time process attributes on the command.
	// Must be called before the command starts.
	Configure(cmd *exec.Cmd)

	// Install attaches the running child to the primitive. On platforms
	// whose primitive is armed entirely at spawn time this is a no-op.
	// Failures are non-fatal: explicit kill on shutdown remains the
	// fallback.
	Install(pid int) error
}

// NewKillGuarantee returns the guarantee implementation for this platform.
// Defined per-OS in the guarantee_*.go files.
func NewKillGuarantee() KillGuarantee {
	return newPlatformGuarantee()
}
