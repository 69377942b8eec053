package tui

import (
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues are bound to the setup form fields.
type SetupValues struct {
	Allotment  string
	StartDate  string
	Theme      string
	Dispensary string
}

// SetupValuesFrom seeds the form from an existing config. today fills in
// the start date when none has been saved.
func SetupValuesFrom(cfg config.Config, today string) SetupValues {
	th, ok := theme.Lookup(cfg.Appearance.Theme)
	if !ok {
		th = theme.FlexokiDark
	}
	return SetupValues{
		Allotment:  cfg.Plan.Allotment,
		StartDate:  cfg.Plan.StartDateOr(today),
		Theme:      th.Name,
		Dispensary: cfg.Shop.DefaultDispensary,
	}
}

// Apply copies the form answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.Plan.Allotment = strings.TrimSpace(v.Allotment)
	cfg.Plan.StartDate = strings.TrimSpace(v.StartDate)
	cfg.Appearance.Theme = v.Theme
	cfg.Shop.DefaultDispensary = v.Dispensary
}

func validateAllotmentField(s string) error {
	_, err := planner.ParseAllotment(s)
	return err
}

func validateDateField(s string) error {
	_, err := planner.ParseDate(s)
	return err
}

// NewSetupForm builds the first-run setup form. dispensaries are offered
// for the default shop; an empty list skips that question.
func NewSetupForm(vals *SetupValues, dispensaries []string) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	fields := []huh.Field{
		huh.NewNote().
			Title("Welcome to reup").
			Description("Plan your 35-day allotment in weekly eighths.\nPress Enter to continue."),
		huh.NewInput().
			Title("35-day allotment (ounce-equivalents)").
			Description("As shown on your registry card, e.g. 3.25").
			Placeholder(config.DefaultAllotment).
			Value(&vals.Allotment).
			Validate(validateAllotmentField),
		huh.NewInput().
			Title("Cycle start date").
			Description("First day of your current 35-day period (YYYY-MM-DD)").
			Placeholder(planner.DateLayout).
			Value(&vals.StartDate).
			Validate(validateDateField),
		huh.NewSelect[string]().
			Title("Color theme").
			Description("Press t in the dashboard to switch light/dark.").
			Options(themeOpts...).
			Value(&vals.Theme),
	}

	if len(dispensaries) > 0 {
		shopOpts := []huh.Option[string]{huh.NewOption("(none)", "")}
		for _, name := range dispensaries {
			shopOpts = append(shopOpts, huh.NewOption(name, name))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Default dispensary").
			Options(shopOpts...).
			Value(&vals.Dispensary))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(huh.ThemeCharm()).
		WithShowHelp(true)
}
