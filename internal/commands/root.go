// Package commands provides CLI commands for agentchat.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/logging"
)

var (
	// Global flags
	modelFlag   string
	verboseFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "agentchat",
	Short: "Terminal chat client for AI agents",
	Long: `agentchat is a terminal chat client for OpenAI-compatible agents.
It opens a chat window with a collapsible conversation sidebar.

Examples:
  agentchat                             Start interactive chat
  agentchat ask "What is Go?"           Send a single prompt
  cat prompt.md | agentchat ask         Read prompt from stdin
  agentchat history list                List saved conversations
  agentchat config show                 Print the effective configuration

Without AGENTCHAT_API_KEY or OPENAI_API_KEY the offline echo agent is used.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "agentchat %s (built %s)\n", Version, BuildTime)
			return nil
		}
		return runChat()
	},
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gpt-4o-mini)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads .env files and starts file logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	envFiles := []string{".env"}
	if dir, err := config.GetConfigDir(); err == nil {
		envFiles = append(envFiles, filepath.Join(dir, ".env"))
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, _ := config.LoadConfig()
	verbose := verboseFlag || cfg.Verbose

	if _, err := config.EnsureConfigDir(); err != nil {
		return err
	}
	logPath, err := config.GetLogPath()
	if err != nil {
		return err
	}
	if err := logging.Init(verbose, logPath); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logging.GetLogger().Debugw("starting", "command", cmd.CommandPath(), "version", Version)
	return nil
}

// getModel returns the model to use (from flag or config)
func getModel(cfg config.Config) string {
	if modelFlag != "" {
		return modelFlag
	}
	return cfg.DefaultModel
}
