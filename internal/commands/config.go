package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/render"
	"github.com/diogo/agentchat/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect agentchat settings.

Settings live in ~/.agentchat/config.json. The API key is read from
AGENTCHAT_API_KEY or OPENAI_API_KEY, optionally set in a .env file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Using default configuration"))
		}
		return showConfig(cfg, cmd.OutOrStdout())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the interactive settings editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.RunConfig()
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available TUI themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range render.TUIThemeNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configThemesCmd)
}

// showConfig prints cfg as JSON followed by whether an API key is available
func showConfig(cfg config.Config, out io.Writer) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(out, string(data))

	keyStatus := "not set (echo agent)"
	if _, err := config.APIKey(); err == nil {
		keyStatus = "set"
	}
	fmt.Fprintf(out, "api key: %s\n", keyStatus)
	if base := config.ResolveBaseURL(cfg); base != "" {
		fmt.Fprintf(out, "base url: %s\n", base)
	}
	return nil
}
