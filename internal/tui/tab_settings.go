package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/cli"
	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/components"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldAllotment = iota
	settingsFieldStartDate
	settingsFieldTheme
	settingsFieldDispensary
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	applied bool  // flash "applied" after a successful edit
	err     error // validation error from the last edit
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.applied = false
	a.settings.err = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldAllotment:
		ti.Placeholder = config.DefaultAllotment + " (ounce-equivalents per 35 days)"
		ti.SetValue(a.cfg.Plan.Allotment)
	case settingsFieldStartDate:
		ti.Placeholder = planner.DateLayout
		ti.SetValue(a.cfg.Plan.StartDateOr(planner.FormatDate(a.today)))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldDispensary:
		ti.Placeholder = "dispensary name (empty to clear)"
		ti.SetValue(a.cfg.Shop.DefaultDispensary)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.err = a.settingsApply(a.settings.input.Value())
		a.settings.editing = false
		a.settings.applied = a.settings.err == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

var errUnknownDispensary = errors.New("not in the dispensary list")

// settingsApply validates val for the selected field and updates the
// in-memory config. Plan fields recompute the plan right away.
func (a *App) settingsApply(raw string) error {
	val := strings.TrimSpace(raw)

	switch a.settings.cursor {
	case settingsFieldAllotment:
		oz, err := planner.ParseAllotment(val)
		if err != nil {
			return err
		}
		a.cfg.Plan.Allotment = oz.String()
		a.recompute()
	case settingsFieldStartDate:
		if _, err := planner.ParseDate(val); err != nil {
			return err
		}
		a.cfg.Plan.StartDate = val
		a.recompute()
	case settingsFieldTheme:
		th, ok := theme.Lookup(val)
		if !ok {
			return fmt.Errorf("unknown theme %q", val)
		}
		a.cfg.Appearance.Theme = th.Name
		theme.SetActive(th.Name)
	case settingsFieldDispensary:
		if val == "" {
			a.cfg.Shop.DefaultDispensary = ""
			return nil
		}
		l, ok := findLink(a.dispensaries, val)
		if !ok {
			return fmt.Errorf("%q: %w", val, errUnknownDispensary)
		}
		a.cfg.Shop.DefaultDispensary = l.Name
	}
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	orNotSet := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}

	fields := []struct{ label, value string }{
		{"Allotment (oz)", orNotSet(a.cfg.Plan.Allotment)},
		{"Cycle Start", orNotSet(a.cfg.Plan.StartDate)},
		{"Theme", a.cfg.Appearance.Theme},
		{"Default Dispensary", orNotSet(a.cfg.Shop.DefaultDispensary)},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := components.CardInnerWidth(cw) - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(valueStyle.Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.err != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(settingsErrorText(a.settings.err)))
	} else if a.settings.applied {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Applied. Saved when you quit."))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(a.cfgPath) + "\n")
	infoBody.WriteString(labelStyle.Render("Data file:    ") + valueStyle.Render(config.DBPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Dispensaries: ") + valueStyle.Render(cli.FormatNumber(int64(len(a.dispensaries)))))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))
	return b.String()
}

// settingsErrorText prefers the user-facing message of validation errors.
func settingsErrorText(err error) string {
	var pe *planner.PlanError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
