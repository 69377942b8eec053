package components

import (
	"strings"
	"testing"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func testPlan(t *testing.T, today string) planner.CyclePlan {
	t.Helper()
	d, err := planner.ParseDate(today)
	if err != nil {
		t.Fatal(err)
	}
	p, err := planner.ComputePlan(decimal.RequireFromString("3.25"), "2024-03-01", d)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestWeekCardRowMarksCurrentWeek(t *testing.T) {
	theme.SetActive("flexoki-dark")
	row := WeekCardRow(testPlan(t, "2024-03-09"), 100)

	if n := strings.Count(row, "▸ now"); n != 1 {
		t.Fatalf("expected one current-week marker, got %d", n)
	}
	if w := lipgloss.Width(row); w != 100 {
		t.Errorf("row width = %d, want 100", w)
	}
	for _, want := range []string{"6 × 8th", "Mar 08 - Mar 14", "17.5g"} {
		if !strings.Contains(row, want) {
			t.Errorf("row missing %q", want)
		}
	}
}

func TestWeekCardRowOutsideCycle(t *testing.T) {
	row := WeekCardRow(testPlan(t, "2024-05-01"), 100)
	if strings.Contains(row, "▸ now") {
		t.Fatal("no week should be current outside the cycle")
	}
}

func TestCycleBarLabel(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{"2024-03-09", "day 9/35"},
		{"2024-02-27", "starts in 3d"},
		{"2024-04-05", "outside cycle"},
	}
	for _, tt := range tests {
		bar := CycleBar(testPlan(t, tt.today), 60)
		if !strings.Contains(bar, tt.want) {
			t.Errorf("today %s: bar %q missing %q", tt.today, bar, tt.want)
		}
	}
}

func TestColorForWeek(t *testing.T) {
	theme.SetActive("flexoki-dark")
	if ColorForWeek(0) != string(theme.Active.TextDim) {
		t.Error("week 0 should be dim")
	}
	if ColorForWeek(1) != string(theme.Active.Green) {
		t.Error("week 1 should be green")
	}
	if ColorForWeek(5) != string(theme.Active.Orange) {
		t.Error("last week should be orange")
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := len(Tabs) - 1 // separators
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: rendered width %d, computed %d", active, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('l') != TabLinks {
		t.Error("l should select Links")
	}
	if TabIdxByKey('x') != TabSettings {
		t.Error("x should select Settings")
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should return -1")
	}
}

func TestStatusBarShowsToday(t *testing.T) {
	bar := RenderStatusBar(80, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), "")
	if !strings.Contains(bar, "Today: 2024-03-09") {
		t.Errorf("status bar missing date: %q", bar)
	}
	if lipgloss.Width(bar) != 80 {
		t.Errorf("width = %d, want 80", lipgloss.Width(bar))
	}
}

func TestRemainingGrams(t *testing.T) {
	values, labels := RemainingGrams(testPlan(t, "2024-03-09"))

	wantLabels := []string{"W1", "W2", "W3", "W4", "W5", "End"}
	if strings.Join(labels, ",") != strings.Join(wantLabels, ",") {
		t.Fatalf("labels = %v, want %v", labels, wantLabels)
	}
	want := []float64{92.1375, 71.1375, 53.6375, 36.1375, 18.6375, 1.1375}
	for i, w := range want {
		if d := values[i] - w; d > 1e-9 || d < -1e-9 {
			t.Errorf("values[%d] = %v, want %v", i, values[i], w)
		}
	}
}

func TestAllotmentChart(t *testing.T) {
	theme.SetActive("flexoki-dark")
	chart := AllotmentChart(testPlan(t, "2024-03-09"), 40, 8)

	lines := strings.Split(chart, "\n")
	if len(lines) < 4 {
		t.Fatalf("chart has %d lines, want a multi-row chart", len(lines))
	}
	last := lines[len(lines)-1]
	for _, want := range []string{"W1", "W5", "End"} {
		if !strings.Contains(last, want) {
			t.Errorf("x-axis labels %q missing %q", last, want)
		}
	}
	for _, line := range lines {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line width %d exceeds 40: %q", w, line)
		}
	}
}

func TestBarChartFallsBackToSparkline(t *testing.T) {
	out := BarChart([]float64{3, 2, 1}, nil, lipgloss.Color("#ffffff"), 10, 8)
	if strings.Contains(out, "\n") {
		t.Fatal("narrow chart should render as a single-line sparkline")
	}
	if lipgloss.Width(out) != 3 {
		t.Errorf("sparkline width = %d, want 3", lipgloss.Width(out))
	}
}
