package tui

import (
	"fmt"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/cli"
	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/components"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderPlanTab(cw int) string {
	if !a.result.OK() {
		return a.renderPlanError(cw)
	}
	p := *a.result.Plan

	var b strings.Builder

	// Row 1: Metric cards
	thisWeek := components.Metric{Label: "This Week", Value: "-", Delta: cli.CycleStatus(p)}
	if w, ok := p.Current(); ok {
		thisWeek.Value = cli.FormatUnits(w.Units)
		thisWeek.Delta = fmt.Sprintf("week %d of %d", w.Week, planner.CycleWeeks)
	}
	metrics := []components.Metric{
		thisWeek,
		{Label: "Cycle Total", Value: cli.FormatUnits(p.TotalUnits), Delta: cli.FormatGrams(p.GramsPurchased)},
		{Label: "Allotment", Value: cli.FormatOunces(p.AllotmentOunces), Delta: cli.FormatGrams(p.TotalGrams)},
		{Label: "Left Unused", Value: cli.FormatGrams(p.GramsLeftover), Delta: "below one eighth"},
	}
	if a.isCompactLayout() {
		metrics = metrics[:2]
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: Cycle progress
	title := fmt.Sprintf("Cycle  %s → %s", cli.FormatDate(p.StartDate), cli.FormatDate(p.EndDate()))
	b.WriteString(components.ContentCard(title,
		components.CycleBar(p, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	// Row 3: Weeks
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Weekly Plan", a.weekList(p, cw), cw))
	} else {
		b.WriteString(components.WeekCardRow(p, cw))
	}
	b.WriteString("\n")

	// Row 4: Details + result line, with the allotment chart beside it
	if a.isCompactLayout() {
		b.WriteString(a.renderPlanDetails(p, cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		chart := components.AllotmentChart(p, components.CardInnerWidth(widths[1]), 8)
		b.WriteString(components.CardRow([]string{
			a.renderPlanDetails(p, widths[0]),
			components.ContentCard("Grams Left Before Each Week", chart, widths[1]),
		}))
	}

	return b.String()
}

func (a App) weekList(p planner.CyclePlan, cw int) string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	currentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	innerW := components.CardInnerWidth(cw)

	lines := make([]string, len(p.Weeks))
	for i, w := range p.Weeks {
		marker := "  "
		style := rowStyle
		if w.Week == p.CurrentWeek {
			marker = cli.CurrentMarker + " "
			style = currentStyle
		}
		line := fmt.Sprintf("%sWeek %d  %-15s  %2d × 8th  %7s",
			marker, w.Week, cli.FormatDateRange(w.Start, w.End), w.Units, cli.FormatGrams(w.Grams))
		lines[i] = style.Width(innerW).Render(truncStr(line, innerW))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderPlanDetails(p planner.CyclePlan, cw int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	resultStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	if !p.InCycle() {
		resultStyle = resultStyle.Foreground(t.Orange)
	}

	rows := [][2]string{
		{"Total Grams in Allotment", cli.FormatGrams(p.TotalGrams)},
		{"Total Grams in Plan", cli.FormatGrams(p.GramsPurchased)},
		{"Grams Left Unused", cli.FormatGrams(p.GramsLeftover)},
		{"Days Remaining", cli.FormatDays(p.DaysRemaining())},
		{"Next Cycle", cli.FormatDate(p.NextStartDate())},
	}

	var body strings.Builder
	for _, r := range rows {
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-26s", r[0])))
		body.WriteString(valueStyle.Render(r[1]))
		body.WriteString("\n")
	}
	body.WriteString("\n")
	body.WriteString(resultStyle.Render(cli.ThisWeekLine(p)))

	if a.cfg.Shop.DefaultDispensary != "" && p.InCycle() {
		body.WriteString("\n")
		body.WriteString(labelStyle.Render("[Enter] shop at " + a.cfg.Shop.DefaultDispensary))
	}

	return components.ContentCard("Details", body.String(), cw)
}

func (a App) renderPlanError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var body strings.Builder
	body.WriteString(labelStyle.Render("Calculation failed. Check inputs."))
	body.WriteString("\n\n")
	body.WriteString(errStyle.Render(a.result.Err.Message))
	if a.result.Err.Input != "" {
		body.WriteString("\n")
		body.WriteString(labelStyle.Render(fmt.Sprintf("Current value: %q", a.result.Err.Input)))
	}
	body.WriteString("\n\n")
	body.WriteString(labelStyle.Render("Press x to open Settings and fix it."))

	return components.AccentCard("Cannot build a plan", body.String(), cw)
}
