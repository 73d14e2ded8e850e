package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/render"
)

// configView is the active screen of the settings editor
type configView int

const (
	viewMain configView = iota
	viewModelSelect
	viewMarkdownSelect
	viewThemeSelect
)

// Rows of the main settings menu
const (
	menuDefaultModel = iota
	menuVerbose
	menuCopyToClipboard
	menuMarkdownStyle
	menuTUITheme
	menuExit
	menuItemCount
)

var menuLabels = [menuItemCount]string{
	menuDefaultModel:    "Default Model",
	menuVerbose:         "Verbose Logging",
	menuCopyToClipboard: "Copy to Clipboard",
	menuMarkdownStyle:   "Markdown Style",
	menuTUITheme:        "TUI Theme",
	menuExit:            "Exit",
}

// feedbackClearMsg clears the feedback line
type feedbackClearMsg struct{}

// ConfigModel is the interactive settings editor
type ConfigModel struct {
	config     config.Config
	configPath string
	save       func(config.Config) error
	keySet     bool

	view         configView
	cursor       int
	choiceCursor int

	feedback        string
	feedbackTimeout time.Duration

	width  int
	height int
	ready  bool
}

// NewConfigModel loads the settings from disk and saves changes back
func NewConfigModel() ConfigModel {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	path, _ := config.GetConfigPath()
	return newConfigModel(cfg, path, config.SaveConfig)
}

func newConfigModel(cfg config.Config, path string, save func(config.Config) error) ConfigModel {
	_, keyErr := config.APIKey()
	if cfg.TUITheme != "" {
		SetTheme(cfg.TUITheme)
	}
	return ConfigModel{
		config:          cfg,
		configPath:      path,
		save:            save,
		keySet:          keyErr == nil,
		feedbackTimeout: 2 * time.Second,
	}
}

// Config returns the settings as currently edited
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init has nothing to start
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// choices lists the values offered by a selection screen
func (m ConfigModel) choices(view configView) []string {
	switch view {
	case viewModelSelect:
		return config.AvailableModels()
	case viewMarkdownSelect:
		return render.MarkdownStyles()
	case viewThemeSelect:
		return render.TUIThemeNames()
	}
	return nil
}

// current returns the configured value edited by a selection screen
func (m ConfigModel) current(view configView) string {
	switch view {
	case viewModelSelect:
		return m.config.DefaultModel
	case viewMarkdownSelect:
		if m.config.Markdown.Style == "" {
			return render.DefaultOptions().Style
		}
		return m.config.Markdown.Style
	case viewThemeSelect:
		if m.config.TUITheme == "" {
			return render.TokyoNightTheme.Name
		}
		return m.config.TUITheme
	}
	return ""
}

// Update handles navigation and selection
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			if m.view == viewMain {
				m.cursor = wrap(m.cursor-1, menuItemCount)
			} else {
				m.choiceCursor = wrap(m.choiceCursor-1, len(m.choices(m.view)))
			}

		case "down", "j":
			if m.view == viewMain {
				m.cursor = wrap(m.cursor+1, menuItemCount)
			} else {
				m.choiceCursor = wrap(m.choiceCursor+1, len(m.choices(m.view)))
			}

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i%n + n) % n
}

func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	if m.view != viewMain {
		value := m.choices(m.view)[m.choiceCursor]
		var label string
		switch m.view {
		case viewModelSelect:
			m.config.DefaultModel = value
			label = "Model"
		case viewMarkdownSelect:
			m.config.Markdown.Style = value
			label = "Markdown style"
		case viewThemeSelect:
			m.config.TUITheme = value
			SetTheme(value)
			label = "TUI theme"
		}
		m.view = viewMain
		return m.persist(fmt.Sprintf("%s set to %s", label, value))
	}

	switch m.cursor {
	case menuDefaultModel:
		return m.openChoices(viewModelSelect), nil
	case menuMarkdownStyle:
		return m.openChoices(viewMarkdownSelect), nil
	case menuTUITheme:
		return m.openChoices(viewThemeSelect), nil

	case menuVerbose:
		m.config.Verbose = !m.config.Verbose
		return m.persist("Verbose logging " + enabledWord(m.config.Verbose))

	case menuCopyToClipboard:
		m.config.CopyToClipboard = !m.config.CopyToClipboard
		return m.persist("Copy to clipboard " + enabledWord(m.config.CopyToClipboard))

	case menuExit:
		return m, tea.Quit
	}
	return m, nil
}

// openChoices switches to a selection screen with the current value highlighted
func (m ConfigModel) openChoices(view configView) ConfigModel {
	m.view = view
	m.choiceCursor = 0
	for i, c := range m.choices(view) {
		if c == m.current(view) {
			m.choiceCursor = i
			break
		}
	}
	return m
}

func (m ConfigModel) persist(feedback string) (tea.Model, tea.Cmd) {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = feedback
	}
	return m, clearFeedback(m.feedbackTimeout)
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// View renders the editor
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, headerStyle.Width(contentWidth).Render(titleStyle.Render("✦ Configuration")))

	keyStatus := configDisabledStyle.Render("✗ not set, echo agent in use")
	if m.keySet {
		keyStatus = configEnabledStyle.Render("✓ set")
	}
	paths := lipgloss.JoinVertical(lipgloss.Left,
		sidebarTitleStyle.Render("Paths"),
		"   Config:  "+configValueStyle.Render(m.configPath),
		"   API key: "+keyStatus,
	)
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(paths))

	var settings string
	if m.view == viewMain {
		settings = m.renderMainMenu()
	} else {
		settings = m.renderChoices()
	}
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(settings))

	if m.feedback != "" {
		sections = append(sections, feedbackStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ConfigModel) renderMainMenu() string {
	values := [menuItemCount]string{
		menuDefaultModel:    configValueStyle.Render(m.current(viewModelSelect)),
		menuVerbose:         m.renderBoolValue(m.config.Verbose),
		menuCopyToClipboard: m.renderBoolValue(m.config.CopyToClipboard),
		menuMarkdownStyle:   configValueStyle.Render(m.current(viewMarkdownSelect)),
		menuTUITheme:        configValueStyle.Render(m.current(viewThemeSelect)),
	}

	lines := []string{sidebarTitleStyle.Render("⚙ Settings")}
	for i := 0; i < menuItemCount; i++ {
		if i == menuExit {
			lines = append(lines, "")
		}
		label := fmt.Sprintf("%-20s", menuLabels[i])
		lines = append(lines, m.renderRow(i == m.cursor, label)+values[i])
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m ConfigModel) renderChoices() string {
	titles := map[configView]string{
		viewModelSelect:    "Select Model",
		viewMarkdownSelect: "Select Markdown Style",
		viewThemeSelect:    "Select TUI Theme",
	}

	lines := []string{sidebarTitleStyle.Render(titles[m.view])}
	current := m.current(m.view)
	for i, c := range m.choices(m.view) {
		row := m.renderRow(i == m.choiceCursor, c)
		if c == current {
			row += configEnabledStyle.Render(" (current)")
		}
		lines = append(lines, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m ConfigModel) renderRow(selected bool, label string) string {
	if selected {
		return sidebarSelectedStyle.Render("▸ " + label)
	}
	return "  " + sidebarItemStyle.Render(label)
}

func (m ConfigModel) renderBoolValue(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

func (m ConfigModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view != viewMain {
		back = "Back"
	}
	items := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" "+back),
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the settings editor
func RunConfig() error {
	p := tea.NewProgram(NewConfigModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
