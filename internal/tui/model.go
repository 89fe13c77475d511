package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/SwonDev/Stacklume/internal/shell"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to animate the loading indicator.
type TickMsg time.Time

// ReadyMsg signals the server became healthy at URL.
type ReadyMsg struct {
	URL string
}

// FailureMsg carries a fatal launch failure.
type FailureMsg struct {
	Failure shell.Failure
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// Phase is the launch phase shown by the TUI.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	version     string
	metricsAddr string

	// Current state
	phase     Phase
	url       string
	failure   *shell.Failure
	startTime time.Time
	dots      int

	// Display options
	width  int
	height int

	// Quit flag
	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	Version     string
	MetricsAddr string
}

// New creates a new TUI model in the loading phase.
func New(cfg Config) Model {
	return Model{
		version:     cfg.Version,
		metricsAddr: cfg.MetricsAddr,
		phase:       PhaseLoading,
		startTime:   time.Now(),
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.phase == PhaseLoading {
			m.dots = (m.dots + 1) % 4
			return m, tickCmd()
		}
		return m, nil

	case ReadyMsg:
		m.phase = PhaseReady
		m.url = msg.URL
		return m, nil

	case FailureMsg:
		f := msg.Failure
		m.phase = PhaseFailed
		m.failure = &f
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Phase returns the current launch phase.
func (m Model) Phase() Phase {
	return m.phase
}

// URL returns the ready server address, empty unless PhaseReady.
func (m Model) URL() string {
	return m.url
}

// Elapsed returns the time since the launcher started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// =============================================================================
// Helpers for external use
// =============================================================================

// SendReady sends a ready transition to the TUI.
func SendReady(p *tea.Program, url string) {
	if p != nil {
		p.Send(ReadyMsg{URL: url})
	}
}

// SendFailure sends a failure transition to the TUI.
func SendFailure(p *tea.Program, f shell.Failure) {
	if p != nil {
		p.Send(FailureMsg{Failure: f})
	}
}

// SendQuit sends a quit message to the TUI.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}

// =============================================================================
// Formatting Helpers (used by view.go)
// =============================================================================

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
