package render

import (
	"os"

	"github.com/diogo/agentchat/internal/config"
)

// OptionsFromConfig builds render options from the markdown section of cfg.
// GLAMOUR_STYLE overrides the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}
