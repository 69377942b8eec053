package components

import (
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tab indexes.
const (
	TabPlan = iota
	TabShop
	TabLinks
	TabSettings
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Plan", Key: 'p', KeyPos: 0},
	{Name: "Shop", Key: 's', KeyPos: 0},
	{Name: "Links", Key: 'l', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1}, // x is not in "Settings"
}

// TabVisualWidth is the rendered width of a tab, used for mouse hit-testing.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2 // horizontal padding
	if !active && tab.KeyPos < 0 {
		w += 3 // "[x]" suffix
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index, filled to width.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Underline(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	padStyle := lipgloss.NewStyle().Background(t.Surface)
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}

		var label string
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			label = inactiveStyle.Render(tab.Name[:tab.KeyPos]) +
				keyStyle.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
				inactiveStyle.Render(tab.Name[tab.KeyPos+1:])
		} else {
			label = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, padStyle.Render(" ")+label+padStyle.Render(" "))
	}

	bar := strings.Join(parts, sep)
	if gap := width - lipgloss.Width(bar); gap > 0 {
		bar += padStyle.Render(strings.Repeat(" ", gap))
	}
	return bar
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
