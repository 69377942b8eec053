package tui

import (
	"fmt"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/store"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/components"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderShopTab(cw int) string {
	return a.renderLinkList("Dispensaries", a.dispensaries, a.shopCursor, a.cfg.Shop.DefaultDispensary,
		"[j/k] navigate  [Enter] open site  [d] set default", cw)
}

func (a App) renderLinksTab(cw int) string {
	return a.renderLinkList("Resources", a.resources, a.linksCursor, "",
		"[j/k] navigate  [Enter] open", cw)
}

func (a App) renderLinkList(title string, items []store.Link, cursor int, starred, hint string, cw int) string {
	t := theme.Active

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	urlStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedURLStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	starStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	nameW := 26

	var body strings.Builder
	switch {
	case a.links == nil:
		body.WriteString(labelStyle.Render("Link store unavailable."))
	case a.linksErr != nil:
		body.WriteString(warnStyle.Render(fmt.Sprintf("Could not load links: %s", a.linksErr)))
	case len(items) == 0:
		body.WriteString(labelStyle.Render("Nothing here yet. Add one with `reup shop add NAME URL`."))
	}

	for i, l := range items {
		star := "  "
		if starred != "" && strings.EqualFold(l.Name, starred) {
			star = "★ "
		}
		name := fmt.Sprintf("%-*s", nameW, truncStr(l.Name, nameW))
		url := truncStr(l.URL, max(innerW-nameW-4, 10))

		if i == cursor {
			row := markerStyle.Render("▸ ") + selectedStyle.Render(star+name) + selectedURLStyle.Render(url)
			if pad := innerW - lipgloss.Width(row); pad > 0 {
				row += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
			body.WriteString(row)
		} else {
			body.WriteString(nameStyle.Render("  "))
			if star != "  " {
				body.WriteString(starStyle.Render(star))
			} else {
				body.WriteString(nameStyle.Render(star))
			}
			body.WriteString(nameStyle.Render(name))
			body.WriteString(urlStyle.Render(url))
		}
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(labelStyle.Render(hint))

	return components.ContentCard(title, body.String(), cw)
}
