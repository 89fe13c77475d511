package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	switch m.phase {
	case PhaseReady:
		sections = append(sections, m.renderReady())
	case PhaseFailed:
		sections = append(sections, m.renderFailure())
	default:
		sections = append(sections, m.renderLoading())
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" Stacklume %s │ %s │ Elapsed: %s ",
		m.version,
		m.renderPhaseLabel(),
		formatDuration(m.Elapsed()),
	)
	return headerStyle.Width(m.width).Render(header)
}

func (m Model) renderPhaseLabel() string {
	switch m.phase {
	case PhaseReady:
		return "● ready"
	case PhaseFailed:
		return "● failed"
	default:
		return "○ starting"
	}
}

// =============================================================================
// Loading Section
// =============================================================================

func (m Model) renderLoading() string {
	dots := strings.Repeat(".", m.dots)
	lines := []string{
		titleStyle.Render("Starting server" + dots),
		"",
		mutedStyle.Render("Resolving resources, picking a port, waiting for health."),
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// =============================================================================
// Ready Section
// =============================================================================

func (m Model) renderReady() string {
	lines := []string{
		statusOK.Render("Server is ready"),
		"",
		RenderKeyValue("Address", urlStyle.Render(m.url)),
	}
	if m.metricsAddr != "" {
		lines = append(lines, RenderKeyValue("Metrics", m.metricsAddr))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// =============================================================================
// Failure Section
// =============================================================================

func (m Model) renderFailure() string {
	f := m.failure
	if f == nil {
		return failureBoxStyle.Render(statusError.Render("Launch failed"))
	}

	lines := []string{
		statusError.Render("Launch failed: " + f.Kind.String()),
		"",
		baseStyle.Render(f.Message),
	}
	if f.Port != 0 {
		lines = append(lines, RenderKeyValue("Port", fmt.Sprintf("%d", f.Port)))
	}
	if f.LogPath != "" {
		lines = append(lines, RenderKeyValue("Full log", f.LogPath))
	}
	if len(f.OutputTail) > 0 {
		lines = append(lines, "", subtitleStyle.Render("Server output (last lines)"))
		for _, line := range f.OutputTail {
			lines = append(lines, dimStyle.Render(line))
		}
	}
	return failureBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	return footerStyle.Render(" q: quit ")
}
