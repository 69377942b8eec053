package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
)

// CurrentMarker flags the current week in tables.
const CurrentMarker = "▸"

// ThisWeekLine is the one-line summary shown under every plan.
func ThisWeekLine(p planner.CyclePlan) string {
	if w, ok := p.Current(); ok {
		return fmt.Sprintf("8ths to Purchase this week: %d", w.Units)
	}
	return fmt.Sprintf("You are outside the %d-day cycle.", planner.CycleDays)
}

// CycleStatus describes where today sits relative to the cycle.
func CycleStatus(p planner.CyclePlan) string {
	switch {
	case p.DaysIntoCycle < 0:
		return "Cycle starts in " + FormatDays(-p.DaysIntoCycle)
	case !p.InCycle():
		return "Cycle ended " + FormatDate(p.EndDate()) + "; next cycle from " + FormatDate(p.NextStartDate())
	}
	return fmt.Sprintf("Week %d of %d, day %d of %d",
		p.CurrentWeek, planner.CycleWeeks, p.DaysIntoCycle+1, planner.CycleDays)
}

// RenderPlan renders the full plan for terminal output.
func RenderPlan(p planner.CyclePlan) string {
	st := currentStyles()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(RenderTitle(fmt.Sprintf("ReUp  |  %s  |  %s to %s",
		FormatOunces(p.AllotmentOunces), FormatDate(p.StartDate), FormatDate(p.EndDate()))))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(p.Weeks)+2)
	for _, w := range p.Weeks {
		label := "  Week " + strconv.Itoa(w.Week)
		if w.Week == p.CurrentWeek {
			label = CurrentMarker + " Week " + strconv.Itoa(w.Week)
		}
		rows = append(rows, []string{
			label,
			FormatDateRange(w.Start, w.End),
			strconv.FormatInt(w.Units, 10),
			FormatGrams(w.Grams),
		})
	}
	rows = append(rows, SeparatorRow, []string{
		"  Total", "", FormatNumber(p.TotalUnits), FormatGrams(p.GramsPurchased),
	})

	b.WriteString(RenderTable(Table{
		Title:   "Weekly Plan",
		Headers: []string{"Week", "Dates", "8ths", "Grams"},
		Rows:    rows,
	}))
	b.WriteString("\n")

	b.WriteString(RenderTable(Table{
		Title: "Details",
		Rows: [][]string{
			{"Total Grams in Allotment", FormatGrams(p.TotalGrams)},
			{"Total Grams in Plan", FormatGrams(p.GramsPurchased)},
			{"Grams Left Unused", FormatGrams(p.GramsLeftover)},
		},
	}))
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(st.muted.Render(CycleStatus(p)))
	b.WriteString("\n  ")
	if p.InCycle() {
		b.WriteString(st.accent.Render(ThisWeekLine(p)))
	} else {
		b.WriteString(st.warn.Render(ThisWeekLine(p)))
	}
	b.WriteString("\n\n")

	return b.String()
}

// RenderError renders a failure for terminal output. Validation failures
// show their user-facing message; anything else gets the error text.
func RenderError(err error) string {
	st := currentStyles()
	msg := err.Error()
	var pe *planner.PlanError
	if errors.As(err, &pe) {
		msg = pe.Message
		if pe.Input != "" {
			msg += st.dim.Render(fmt.Sprintf("  (got %q)", pe.Input))
		}
	}
	return "  " + st.warn.Render("Error: ") + msg + "\n"
}
