package cli

import (
	"fmt"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// SeparatorRow inserts a horizontal rule when used as a table row.
var SeparatorRow = []string{"---"}

type styles struct {
	title, header, value, muted, accent, warn, dim lipgloss.Style
}

// currentStyles reads the active theme on every render so that --theme and
// the config setting take effect without re-initialization.
func currentStyles() styles {
	t := theme.Active
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary).Align(lipgloss.Center),
		header: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		value:  lipgloss.NewStyle().Foreground(t.TextPrimary),
		muted:  lipgloss.NewStyle().Foreground(t.TextMuted),
		accent: lipgloss.NewStyle().Bold(true).Foreground(t.AccentBright),
		warn:   lipgloss.NewStyle().Foreground(t.Orange),
		dim:    lipgloss.NewStyle().Foreground(t.TextDim),
	}
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	st := currentStyles()
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(st.title.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest right-aligned.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	st := currentStyles()

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return st.dim.Render(b.String()) + "\n"
	}
	bar := st.dim.Render("│")

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(st.header.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(bar)
		for i, h := range t.Headers {
			b.WriteString(st.header.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(bar)
			}
		}
		b.WriteString(bar + "\n")
		b.WriteString(rule("├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == SeparatorRow[0] {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}

		b.WriteString(bar)
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(st.value.Render(padded))
			if i < numCols-1 {
				b.WriteString(bar)
			}
		}
		b.WriteString(bar + "\n")
	}

	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := min(float64(current)/float64(total), 1)
	if pct < 0 {
		pct = 0
	}
	filled := min(int(pct*float64(width)), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d/%d", currentStyles().muted.Render(bar), current, total)
}
