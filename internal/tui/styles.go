// Package tui provides the terminal user interface for agentchat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorBorder    lipgloss.Color
	colorUser      lipgloss.Color
	colorAgent     lipgloss.Color
	colorSystem    lipgloss.Color
	colorHighlight lipgloss.Color
	colorError     lipgloss.Color
	colorText      lipgloss.Color
	colorTextDim   lipgloss.Color
	colorTextMute  lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	// Per-author labels and bubbles
	labelStyles  map[models.MessageAuthor]lipgloss.Style
	bubbleStyles map[models.MessageAuthor]lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle    lipgloss.Style
	feedbackStyle lipgloss.Style

	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
	welcomeStyle      lipgloss.Style

	sidebarStyle         lipgloss.Style
	sidebarTitleStyle    lipgloss.Style
	sidebarItemStyle     lipgloss.Style
	sidebarSelectedStyle lipgloss.Style
	sidebarActiveStyle   lipgloss.Style
	sidebarMetaStyle     lipgloss.Style

	configPanelStyle    lipgloss.Style
	configValueStyle    lipgloss.Style
	configEnabledStyle  lipgloss.Style
	configDisabledStyle lipgloss.Style
)

func init() {
	applyTheme(render.TokyoNightTheme)
}

// SetTheme switches the TUI colors to the named theme.
// Returns false and leaves the current theme in place if the name is unknown.
func SetTheme(name string) bool {
	theme, ok := render.GetTUIThemeByName(name)
	if !ok {
		return false
	}
	applyTheme(theme)
	return true
}

func applyTheme(theme render.TUITheme) {
	colorBorder = theme.Border
	colorUser = theme.User
	colorAgent = theme.Agent
	colorSystem = theme.System
	colorHighlight = theme.Highlight
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorAgent).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	labelStyles = map[models.MessageAuthor]lipgloss.Style{
		models.AuthorUser:   lipgloss.NewStyle().Foreground(colorUser).Bold(true).MarginLeft(4),
		models.AuthorAgent:  lipgloss.NewStyle().Foreground(colorAgent).Bold(true),
		models.AuthorSystem: lipgloss.NewStyle().Foreground(colorSystem).Italic(true).MarginLeft(2),
	}

	bubbleStyles = map[models.MessageAuthor]lipgloss.Style{
		models.AuthorUser: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorUser).
			Padding(0, 1).
			MarginLeft(4),
		models.AuthorAgent: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAgent).
			Foreground(colorText).
			Padding(0, 1).
			MarginRight(4),
		models.AuthorSystem: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorSystem).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			Foreground(colorTextDim).
			Italic(true).
			PaddingLeft(1).
			MarginLeft(2),
	}

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorHighlight).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	feedbackStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorAgent).
		Bold(true).
		Align(lipgloss.Center)

	welcomeIconStyle = lipgloss.NewStyle().
		Foreground(colorHighlight).
		Align(lipgloss.Center)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Align(lipgloss.Center)

	sidebarStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorHighlight).
		Padding(0, 1)

	sidebarTitleStyle = lipgloss.NewStyle().
		Foreground(colorHighlight).
		Bold(true).
		MarginBottom(1)

	sidebarItemStyle = lipgloss.NewStyle().
		Foreground(colorText)

	sidebarSelectedStyle = lipgloss.NewStyle().
		Foreground(colorHighlight).
		Bold(true)

	sidebarActiveStyle = lipgloss.NewStyle().
		Foreground(colorAgent)

	sidebarMetaStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	configPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	configValueStyle = lipgloss.NewStyle().
		Foreground(colorAgent)

	configEnabledStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true)

	configDisabledStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)
}

// FormatError returns a styled error message with a hint for known failure classes.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	detailStyle := lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("⚠ Error: %v", err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n")
		sb.WriteString(detailStyle.Render(fmt.Sprintf("HTTP Status: %d", status)))
	}

	var hint string
	switch {
	case apierrors.IsAuthError(err):
		hint = "Set AGENTCHAT_API_KEY or OPENAI_API_KEY (a .env file works too)"
	case apierrors.IsRateLimitError(err):
		hint = "Rate limited. Try again later or use a different model"
	case apierrors.IsTimeoutError(err):
		hint = "Request timed out. Try again or raise request_timeout in the config"
	case apierrors.IsConfigError(err):
		hint = "Run 'agentchat config path' to find the config file"
	}
	if hint != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(colorAgent).PaddingLeft(2).Render("💡 " + hint))
	}

	return sb.String()
}
