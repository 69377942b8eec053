// Package theme defines the color themes shared by the reup CLI and TUI.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used throughout the UI.
type Theme struct {
	Name          string
	Dark          bool
	Counterpart   string         // theme with the opposite brightness in the same family
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Current week, selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Focus and current-week borders
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color // Links, active states
	AccentBright  lipgloss.Color
	Green         lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	Yellow        lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Dark:          true,
	Counterpart:   "flexoki-light",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Green:         lipgloss.Color("#879A39"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	Yellow:        lipgloss.Color("#D0A215"),
	Cyan:          lipgloss.Color("#24837B"),
}

// FlexokiLight is the paper side of Flexoki.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Counterpart:   "flexoki-dark",
	Background:    lipgloss.Color("#FFFCF0"),
	Surface:       lipgloss.Color("#F2F0E5"),
	SurfaceHover:  lipgloss.Color("#E6E4D9"),
	SurfaceBright: lipgloss.Color("#DAD8CE"),
	Border:        lipgloss.Color("#CECDC3"),
	BorderAccent:  lipgloss.Color("#24837B"),
	TextDim:       lipgloss.Color("#B7B5AC"),
	TextMuted:     lipgloss.Color("#6F6E69"),
	TextPrimary:   lipgloss.Color("#100F0F"),
	Accent:        lipgloss.Color("#24837B"),
	AccentBright:  lipgloss.Color("#1C6C66"),
	Green:         lipgloss.Color("#66800B"),
	Orange:        lipgloss.Color("#BC5215"),
	Red:           lipgloss.Color("#AF3029"),
	Blue:          lipgloss.Color("#205EA6"),
	Yellow:        lipgloss.Color("#AD8301"),
	Cyan:          lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a warm pastel theme with soft, soothing colors.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Dark:          true,
	Counterpart:   "catppuccin-latte",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Green:         lipgloss.Color("#A6E3A1"),
	Orange:        lipgloss.Color("#FAB387"),
	Red:           lipgloss.Color("#F38BA8"),
	Blue:          lipgloss.Color("#89B4FA"),
	Yellow:        lipgloss.Color("#F9E2AF"),
	Cyan:          lipgloss.Color("#94E2D5"),
}

// CatppuccinLatte is the light Catppuccin flavor.
var CatppuccinLatte = Theme{
	Name:          "catppuccin-latte",
	Counterpart:   "catppuccin-mocha",
	Background:    lipgloss.Color("#EFF1F5"),
	Surface:       lipgloss.Color("#E6E9EF"),
	SurfaceHover:  lipgloss.Color("#DCE0E8"),
	SurfaceBright: lipgloss.Color("#CCD0DA"),
	Border:        lipgloss.Color("#BCC0CC"),
	BorderAccent:  lipgloss.Color("#1E66F5"),
	TextDim:       lipgloss.Color("#9CA0B0"),
	TextMuted:     lipgloss.Color("#6C6F85"),
	TextPrimary:   lipgloss.Color("#4C4F69"),
	Accent:        lipgloss.Color("#1E66F5"),
	AccentBright:  lipgloss.Color("#7287FD"),
	Green:         lipgloss.Color("#40A02B"),
	Orange:        lipgloss.Color("#FE640B"),
	Red:           lipgloss.Color("#D20F39"),
	Blue:          lipgloss.Color("#1E66F5"),
	Yellow:        lipgloss.Color("#DF8E1D"),
	Cyan:          lipgloss.Color("#179299"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Dark:          true,
	Counterpart:   "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Green:         lipgloss.Color("2"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	Yellow:        lipgloss.Color("3"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, FlexokiLight, CatppuccinMocha, CatppuccinLatte, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// Lookup finds a theme by name. The plain names "light" and "dark" from
// older config files map onto the Flexoki pair.
func Lookup(name string) (Theme, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "dark":
		return FlexokiDark, true
	case "light":
		return FlexokiLight, true
	}
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Toggle switches the active theme to its light/dark counterpart and
// returns the new theme name.
func Toggle() string {
	Active = ByName(Active.Counterpart)
	return Active.Name
}
