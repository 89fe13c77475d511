package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SwonDev/Stacklume/internal/shell"
)

// ProgramShell adapts a running Bubble Tea program to the shell.Shell
// interface. Signals become program messages, so the launcher never touches
// the model directly.
type ProgramShell struct {
	p *tea.Program
}

// NewProgramShell wraps p.
func NewProgramShell(p *tea.Program) *ProgramShell {
	return &ProgramShell{p: p}
}

// ShowLoading is a no-op: the model starts in the loading phase.
func (s *ProgramShell) ShowLoading() {}

// Navigate transitions the TUI to the ready phase.
func (s *ProgramShell) Navigate(url string) {
	SendReady(s.p, url)
}

// ShowFailure transitions the TUI to the failed phase.
func (s *ProgramShell) ShowFailure(f shell.Failure) {
	SendFailure(s.p, f)
}

// SetVisible is a no-op: a terminal surface is always visible.
func (s *ProgramShell) SetVisible(bool) {}
