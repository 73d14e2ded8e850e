package render

import (
	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the chat shell
type TUITheme struct {
	Name string

	Border lipgloss.Color

	// One accent per message author
	User   lipgloss.Color
	Agent  lipgloss.Color
	System lipgloss.Color

	Highlight lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in TUI themes
var (
	TokyoNightTheme = TUITheme{
		Name:      "tokyonight",
		Border:    lipgloss.Color("#414868"),
		User:      lipgloss.Color("#9ece6a"),
		Agent:     lipgloss.Color("#7aa2f7"),
		System:    lipgloss.Color("#e0af68"),
		Highlight: lipgloss.Color("#bb9af7"),
		Error:     lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
		TextMute:  lipgloss.Color("#3b4261"),
	}

	CatppuccinMochaTheme = TUITheme{
		Name:      "catppuccin",
		Border:    lipgloss.Color("#45475a"),
		User:      lipgloss.Color("#a6e3a1"),
		Agent:     lipgloss.Color("#89b4fa"),
		System:    lipgloss.Color("#f9e2af"),
		Highlight: lipgloss.Color("#cba6f7"),
		Error:     lipgloss.Color("#f38ba8"),
		Text:      lipgloss.Color("#cdd6f4"),
		TextDim:   lipgloss.Color("#6c7086"),
		TextMute:  lipgloss.Color("#45475a"),
	}

	NordTheme = TUITheme{
		Name:      "nord",
		Border:    lipgloss.Color("#4c566a"),
		User:      lipgloss.Color("#a3be8c"),
		Agent:     lipgloss.Color("#88c0d0"),
		System:    lipgloss.Color("#ebcb8b"),
		Highlight: lipgloss.Color("#b48ead"),
		Error:     lipgloss.Color("#bf616a"),
		Text:      lipgloss.Color("#eceff4"),
		TextDim:   lipgloss.Color("#7b88a1"),
		TextMute:  lipgloss.Color("#4c566a"),
	}

	DraculaTheme = TUITheme{
		Name:      "dracula",
		Border:    lipgloss.Color("#6272a4"),
		User:      lipgloss.Color("#50fa7b"),
		Agent:     lipgloss.Color("#8be9fd"),
		System:    lipgloss.Color("#f1fa8c"),
		Highlight: lipgloss.Color("#ff79c6"),
		Error:     lipgloss.Color("#ff5555"),
		Text:      lipgloss.Color("#f8f8f2"),
		TextDim:   lipgloss.Color("#6272a4"),
		TextMute:  lipgloss.Color("#44475a"),
	}
)

// AvailableTUIThemes returns all built-in themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		CatppuccinMochaTheme,
		NordTheme,
		DraculaTheme,
	}
}

// GetTUIThemeByName returns a theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// TUIThemeNames returns the names of all built-in themes
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
