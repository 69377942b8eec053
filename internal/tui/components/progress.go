package components

import (
	"fmt"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForWeek returns the bar color for a point in the cycle: calm early,
// warmer as the cycle runs out.
func ColorForWeek(week int) string {
	t := theme.Active
	switch {
	case week <= 0:
		return string(t.TextDim)
	case week >= planner.CycleWeeks:
		return string(t.Orange)
	case week == planner.CycleWeeks-1:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

// CycleBar renders a labeled bar for how far today is into the cycle,
// followed by "day N/35" or the out-of-cycle status.
func CycleBar(p planner.CyclePlan, width int) string {
	t := theme.Active

	label := "outside cycle"
	if p.InCycle() {
		label = fmt.Sprintf("day %d/%d", p.DaysIntoCycle+1, planner.CycleDays)
	} else if p.DaysIntoCycle < 0 {
		label = fmt.Sprintf("starts in %dd", -p.DaysIntoCycle)
	}
	label = fmt.Sprintf("%-14s", label)

	barW := max(width-lipgloss.Width(label)-1, 4)

	bar := progress.New(
		progress.WithSolidFill(ColorForWeek(p.CurrentWeek)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(p.Progress()) + spaceStyle.Render(" ") + labelStyle.Render(label)
}
