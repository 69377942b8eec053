package components

import (
	"fmt"
	"strconv"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// WeekCard renders one week of the plan. The current week gets the accent
// border and a "now" marker.
func WeekCard(w planner.WeeklyAllocation, current bool, outerWidth int) string {
	t := theme.Active

	unitsStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	nowStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	title := "Week " + strconv.Itoa(w.Week)
	body := unitsStyle.Render(fmt.Sprintf("%d × 8th", w.Units)) + "\n" +
		mutedStyle.Render(w.Grams.StringFixed(1)+"g") + "\n" +
		mutedStyle.Render(w.Start.Format("Jan 02")+" - "+w.End.Format("Jan 02"))

	if current {
		return AccentCard(title+nowStyle.Render(" ▸ now"), body, outerWidth)
	}
	return ContentCard(title, body, outerWidth)
}

// WeekCardRow renders all weeks of a plan side by side across totalWidth.
func WeekCardRow(p planner.CyclePlan, totalWidth int) string {
	widths := LayoutRow(totalWidth, len(p.Weeks))
	cards := make([]string, len(p.Weeks))
	for i, w := range p.Weeks {
		cards[i] = WeekCard(w, w.Week == p.CurrentWeek, widths[i])
	}
	return CardRow(cards)
}
