package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shellbench/shellbench/model"
	"github.com/shellbench/shellbench/session"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			MarginRight(2).
			Width(34)
)

// dashboardOrder lists the columns left to right.
var dashboardOrder = []model.TargetID{model.TargetTauri, model.TargetElectron}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("BENCHMARK"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Tauri vs Electron"))
	sb.WriteString("\n\n")

	if m.running {
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Running benchmarks...")
		if m.status != "" {
			sb.WriteString("  ")
			sb.WriteString(dimStyle.Render(m.status))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString(dimStyle.Render("Environment: "))
	sb.WriteString(fmt.Sprintf("%s %s %s", m.cfg.Platform, dimStyle.Render("|"), m.cfg.Arch))
	sb.WriteString("\n\n")

	columns := make([]string, 0, len(dashboardOrder))
	for _, id := range dashboardOrder {
		columns = append(columns, columnStyle.Render(m.column(id)))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	sb.WriteString("\n")

	if len(m.errors) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("Errors:"))
		sb.WriteString("\n")
		for _, e := range m.errors {
			sb.WriteString(errorStyle.Render(e))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Press 'r' to run benchmarks | 'q' to quit"))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) column(id model.TargetID) string {
	lines := []string{headerStyle.Render(strings.ToUpper(id.DisplayName())), ""}

	for _, p := range m.cfg.Selection {
		value, ok := m.cells[session.Cell{Target: id, Probe: p}]
		if !ok {
			value = pending
		}
		lines = append(lines, fmt.Sprintf("%-13s %s", p.Label()+":", value))
	}

	return strings.Join(lines, "\n")
}
