package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (t *Theme) renderHeader(title, subtitle string, width int) string {
	rows := []string{t.Header.Render(truncateEnd(title, width-2))}
	if subtitle != "" {
		rows = append(rows, t.StatusInfo.Render(truncateEnd(subtitle, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderInputFrame draws a rounded border around an already rendered input.
func (t *Theme) renderInputFrame(inputView string, focused bool, width int) string {
	border := t.Muted
	if focused {
		border = t.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(width-2, 10)).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// truncateEnd shortens s to at most limit runes, ending with an ellipsis
// when something was cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}
