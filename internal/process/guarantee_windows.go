//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// jobObjectGuarantee wraps a Windows Job Object created with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE. When the launcher process terminates
// for any reason, including TerminateProcess from an uninstaller, the OS
// closes the job handle and kills every assigned process with it.
//
// The job handle is retained for the guarantee's lifetime and never closed
// explicitly; its closure is driven by the launcher's own death, which is
// the entire point.
type jobObjectGuarantee struct {
	job windows.Handle
}

func newPlatformGuarantee() KillGuarantee {
	return &jobObjectGuarantee{}
}

func (*jobObjectGuarantee) Name() string { return "job-object" }

// Configure suppresses the child's console window.
func (*jobObjectGuarantee) Configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}

// Install creates the job object and assigns the child to it.
func (g *jobObjectGuarantee) Install(pid int) error {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return fmt.Errorf("create job object: %w", err)
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(job)
		return fmt.Errorf("set job object limits: %w", err)
	}

	proc, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		_ = windows.CloseHandle(job)
		return fmt.Errorf("open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(proc)

	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		_ = windows.CloseHandle(job)
		return fmt.Errorf("assign process to job object: %w", err)
	}

	// Retain the handle; the OS closes it when the launcher dies.
	g.job = job
	return nil
}
