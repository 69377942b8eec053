package components

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

// RemainingGrams returns the grams still unbought before each week's
// purchase, followed by the grams left once the cycle is done. Labels are
// "W1".."W5" and "End".
func RemainingGrams(p planner.CyclePlan) ([]float64, []string) {
	values := make([]float64, 0, len(p.Weeks)+1)
	labels := make([]string, 0, len(p.Weeks)+1)

	left := p.TotalGrams
	for _, w := range p.Weeks {
		values = append(values, left.InexactFloat64())
		labels = append(labels, "W"+strconv.Itoa(w.Week))
		left = left.Sub(w.Grams)
	}
	values = append(values, left.InexactFloat64())
	labels = append(labels, "End")
	return values, labels
}

// AllotmentChart renders the remaining-grams series as a bar chart sized to
// fit a card body of width x height.
func AllotmentChart(p planner.CyclePlan, width, height int) string {
	values, labels := RemainingGrams(p)
	return BarChart(values, labels, lipgloss.Color(ColorForWeek(p.CurrentWeek)), width, height)
}

// BarChart renders one column per value with a labelled y-axis. Narrow or
// short areas fall back to a sparkline.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y-axis: compute tick step and ceiling
	tickStep := chartTickStep(maxVal)
	maxIntervals := max(height/2, 2)
	for int(math.Ceil(maxVal/tickStep)) > maxIntervals {
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := max(int(math.Round(ceiling/tickStep)), 1)

	rowsPerTick := max(height/numIntervals, 2)
	chartH := rowsPerTick * numIntervals

	yLabelW := max(len(formatChartLabel(ceiling))+1, 4)
	tickLabels := make(map[int]string, numIntervals)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	n := len(values)
	chartW := max(width-yLabelW-1, 5)
	const gap = 1
	barW := min(max((chartW-(n-1)*gap)/n, 1), 6)
	axisLen := n*barW + (n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	lastStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			style := barStyle
			if i == n-1 {
				style = lastStyle
			}
			switch {
			case v >= rowTop:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				frac := (v - rowBottom) / (rowTop - rowBottom)
				idx := min(max(int(frac*8), 1), 8)
				b.WriteString(style.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	// One label per bar, skipped where it would overlap the previous one.
	if len(labels) == n {
		buf := []byte(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + gap)
			if pos <= lastEnd || pos >= axisLen {
				continue
			}
			end := min(pos+len(lbl), axisLen)
			copy(buf[pos:end], lbl[:end-pos])
			lastEnd = end
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(buf), " ")))
	}

	return b.String()
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
