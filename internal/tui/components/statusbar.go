package components

import (
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. flash is a transient
// message (e.g. "Opened Curaleaf") shown in the middle when non-empty.
func RenderStatusBar(width int, today, flash string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	flashStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	left := " [?]help  [t]heme  [q]uit"
	if flash != "" {
		left += "   " + flashStyle.Render(flash)
	}
	right := ""
	if today != "" {
		right = "Today: " + today + " "
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
