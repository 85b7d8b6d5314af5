package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hookdsh/hookd/internal/utils"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	denyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func (m Model) View() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n" +
			helpStyle.Render("r refresh · q quit") + "\n"
	}
	if m.view == dispatchView {
		return m.dispatchListView()
	}
	return m.sessionListView()
}

func (m Model) sessionListView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hookd sessions"))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-38s %-10s %-12s %s", "ID", "STATUS", "ACTIVITY", "DIRECTORY")))
	b.WriteString("\n")

	if len(m.sessions) == 0 {
		b.WriteString("  no sessions recorded\n")
	}

	for i, s := range m.sessions {
		line := fmt.Sprintf("  %-38s %-10s %-12s %s",
			s.ID, s.Status, utils.FormatAge(s.LastActivity),
			utils.TruncateStr(s.WorkingDirectory, 40))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move · enter history · r refresh · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) dispatchListView() string {
	var b strings.Builder

	session := ""
	if m.cursor < len(m.sessions) {
		session = m.sessions[m.cursor].ID
	}
	b.WriteString(titleStyle.Render("dispatches · " + session))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-20s %-13s %-14s %-8s %s", "TIME", "EVENT", "TOOL", "DECISION", "REASONS")))
	b.WriteString("\n")

	if len(m.dispatches) == 0 {
		b.WriteString("  no dispatches recorded\n")
	}

	end := min(len(m.dispatches), m.scrollOffset+m.pageSize())
	for _, d := range m.dispatches[m.scrollOffset:end] {
		line := fmt.Sprintf("  %-20s %-13s %-14s %-8s %s",
			d.CreatedAt.Format("2006-01-02 15:04:05"),
			d.Event, utils.TruncateStr(d.ToolName, 14), d.Decision,
			utils.TruncateStr(strings.Join(d.Reasons, "; "), 50))
		switch d.Decision {
		case "deny":
			line = denyStyle.Render(line)
		case "error":
			line = warnStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll · esc back · r refresh · q quit"))
	b.WriteString("\n")
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
