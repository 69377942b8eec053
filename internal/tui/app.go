// Package tui provides the interactive Bubble Tea dashboard for reup.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/planner"
	"github.com/moondogdev/reup-allotment-calculator/internal/store"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/components"
	"github.com/moondogdev/reup-allotment-calculator/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// LinkSource is the subset of the store the dashboard reads.
type LinkSource interface {
	Dispensaries() ([]store.Link, error)
	Resources() ([]store.Link, error)
}

// Options configures a new App.
type Options struct {
	Planner    *planner.Planner
	Links      LinkSource         // nil hides the Shop and Links content
	Open       func(string) error // opens a URL; nil disables opening
	Logger     zerolog.Logger
	FirstRun   bool   // show the setup form before the dashboard
	ConfigPath string // shown on the Settings tab; defaults to config.ConfigPath()
}

// linksLoadedMsg carries the store contents.
type linksLoadedMsg struct {
	dispensaries []store.Link
	resources    []store.Link
	err          error
}

// linkOpenedMsg reports the outcome of opening a link.
type linkOpenedMsg struct {
	name string
	err  error
}

// dayTickMsg fires periodically so the plan follows the calendar.
type dayTickMsg time.Time

const dayTickInterval = time.Minute

// App is the root Bubble Tea model.
type App struct {
	cfg     config.Config
	cfgPath string
	planner *planner.Planner
	links   LinkSource
	open    func(string) error
	log     zerolog.Logger

	// Plan state
	today  time.Time
	result planner.Result

	// Store contents
	dispensaries []store.Link
	resources    []store.Link
	linksErr     error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     string

	// Per-tab state
	shopCursor  int
	linksCursor int
	settings    settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

const (
	minTerminalWidth = 60
	compactWidth     = 100
	maxContentWidth  = 140

	minContentHeight = 5
)

// NewApp creates a new TUI app model for cfg.
func NewApp(cfg config.Config, opts Options) App {
	p := opts.Planner
	if p == nil {
		p = planner.New()
	}
	a := App{
		cfg:       cfg,
		cfgPath:   opts.ConfigPath,
		planner:   p,
		links:     opts.Links,
		open:      opts.Open,
		log:       opts.Logger,
		needSetup: opts.FirstRun,
	}
	if a.cfgPath == "" {
		a.cfgPath = config.ConfigPath()
	}
	theme.SetActive(cfg.Appearance.Theme)
	a.recompute()
	// Without a store there is nothing to wait for before asking.
	if a.needSetup && a.links == nil {
		a.startSetup()
	}
	return a
}

// Config returns the configuration as edited during the session.
func (a App) Config() config.Config {
	return a.cfg
}

// Result returns the plan currently on screen.
func (a App) Result() planner.Result {
	return a.result
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		dayTickCmd(),
	}
	if a.links != nil {
		cmds = append(cmds, loadLinksCmd(a.links))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// recompute re-evaluates the plan from the config as of the planner's today.
func (a *App) recompute() {
	a.today = a.planner.Today()
	start := a.cfg.Plan.StartDateOr(planner.FormatDate(a.today))
	a.result = planner.Evaluate(a.cfg.Plan.Allotment, start, a.today)
	if a.result.Err != nil {
		a.log.Debug().Str("kind", string(a.result.Err.Kind)).Msg("plan input rejected")
	}
}

func (a *App) startSetup() tea.Cmd {
	vals := SetupValuesFrom(a.cfg, planner.FormatDate(a.today))
	a.setupVals = &vals
	a.setupForm = NewSetupForm(a.setupVals, linkNames(a.dispensaries))
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case linksLoadedMsg:
		a.dispensaries = msg.dispensaries
		a.resources = msg.resources
		a.linksErr = msg.err
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Msg("loading links")
		}
		a.shopCursor = clampCursor(a.shopCursor, len(a.dispensaries))
		a.linksCursor = clampCursor(a.linksCursor, len(a.resources))
		if a.needSetup && a.setupForm == nil {
			return a, a.startSetup()
		}
		return a, nil

	case linkOpenedMsg:
		if msg.err != nil {
			a.flash = "Could not open " + msg.name
			a.log.Warn().Err(msg.err).Str("link", msg.name).Msg("opening link")
		} else {
			a.flash = "Opened " + msg.name
		}
		return a, nil

	case dayTickMsg:
		if !a.planner.Today().Equal(a.today) {
			a.recompute()
			a.log.Info().Str("today", planner.FormatDate(a.today)).Msg("date rolled over")
		}
		return a, dayTickCmd()
	}

	// First-run setup form takes every other message.
	if a.needSetup {
		if a.setupForm == nil {
			// Waiting for the dispensary list.
			if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
				return a, tea.Quit
			}
			return a, nil
		}
		return a.updateSetupForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return a.updateMouse(msg)
	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Settings text input intercepts all keys while editing
	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.flash = ""

	switch key {
	case "q":
		return a, tea.Quit
	case "t":
		a.cfg.Appearance.Theme = theme.Toggle()
		a.log.Debug().Str("theme", a.cfg.Appearance.Theme).Msg("theme toggled")
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	switch a.activeTab {
	case components.TabShop:
		if cmd, ok := a.updateLinkList(key, &a.shopCursor, a.dispensaries); ok {
			return a, cmd
		}
		if key == "d" && len(a.dispensaries) > 0 {
			a.cfg.Shop.DefaultDispensary = a.dispensaries[a.shopCursor].Name
			a.flash = "Default dispensary: " + a.cfg.Shop.DefaultDispensary
			return a, nil
		}
	case components.TabLinks:
		if cmd, ok := a.updateLinkList(key, &a.linksCursor, a.resources); ok {
			return a, cmd
		}
	case components.TabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	case components.TabPlan:
		if key == "enter" && a.cfg.Shop.DefaultDispensary != "" {
			if l, ok := findLink(a.dispensaries, a.cfg.Shop.DefaultDispensary); ok {
				return a, a.openCmd(l)
			}
		}
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// updateLinkList handles navigation in the Shop and Links lists. ok is false
// when the key is not a list key.
func (a *App) updateLinkList(key string, cursor *int, items []store.Link) (tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if *cursor < len(items)-1 {
			*cursor++
		}
		return nil, true
	case "k", "up":
		if *cursor > 0 {
			*cursor--
		}
		return nil, true
	case "g":
		*cursor = 0
		return nil, true
	case "G":
		*cursor = max(len(items)-1, 0)
		return nil, true
	case "enter", "o":
		if len(items) == 0 {
			return nil, true
		}
		return a.openCmd(items[*cursor]), true
	}
	return nil, false
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showHelp || a.settings.editing {
		return a, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		// Tab bar is the first line
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case components.TabShop:
		a.shopCursor = clampCursor(a.shopCursor+delta, len(a.dispensaries))
	case components.TabLinks:
		a.linksCursor = clampCursor(a.linksCursor+delta, len(a.resources))
	case components.TabSettings:
		a.settings.cursor = clampCursor(a.settings.cursor+delta, settingsFieldCount)
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		a.recompute()
		a.log.Info().Str("allotment", a.cfg.Plan.Allotment).Str("start", a.cfg.Plan.StartDate).Msg("setup completed")
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  reup needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"p s l x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in lists"},
		}},
		{"Actions", [][2]string{
			{"Enter", "Open link / Edit setting"},
			{"d", "Make dispensary the default"},
			{"t", "Switch light / dark"},
			{"Esc", "Cancel edit"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, planner.FormatDate(a.today), a.flash)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case components.TabPlan:
		content = a.renderPlanTab(cw)
	case components.TabShop:
		content = a.renderShopTab(cw)
	case components.TabLinks:
		content = a.renderLinksTab(cw)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func dayTickCmd() tea.Cmd {
	return tea.Tick(dayTickInterval, func(t time.Time) tea.Msg {
		return dayTickMsg(t)
	})
}

func loadLinksCmd(src LinkSource) tea.Cmd {
	return func() tea.Msg {
		disp, err := src.Dispensaries()
		if err != nil {
			return linksLoadedMsg{err: err}
		}
		res, err := src.Resources()
		return linksLoadedMsg{dispensaries: disp, resources: res, err: err}
	}
}

func (a App) openCmd(l store.Link) tea.Cmd {
	if a.open == nil {
		return nil
	}
	open := a.open
	return func() tea.Msg {
		return linkOpenedMsg{name: l.Name, err: open(l.URL)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	return max(c, 0)
}

func linkNames(links []store.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Name
	}
	return out
}

func findLink(links []store.Link, name string) (store.Link, bool) {
	for _, l := range links {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return store.Link{}, false
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
