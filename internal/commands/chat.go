package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/agent"
	"github.com/diogo/agentchat/internal/config"
	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/history"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/render"
	"github.com/diogo/agentchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

Press Ctrl+B to open the conversation sidebar. Type 'exit', 'quit',
or press Ctrl+C to end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Using default configuration"))
	}

	ag, err := newAgent(cfg)
	if err != nil {
		return err
	}

	configDir, err := config.EnsureConfigDir()
	if err != nil {
		return err
	}
	store, err := history.NewStore(configDir)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}

	if cfg.TUITheme != "" && !tui.SetTheme(cfg.TUITheme) {
		logging.GetLogger().Warnw("unknown TUI theme, keeping default", "theme", cfg.TUITheme)
	}

	return tui.RunShell(tui.ShellOptions{
		Agent:      ag,
		Store:      store,
		ModelName:  modelLabel(ag, cfg),
		RenderOpts: render.OptionsFromConfig(cfg),
	})
}

// newAgent builds the OpenAI agent, or the echo agent when no API key is set
func newAgent(cfg config.Config) (agent.Agent, error) {
	key, err := config.APIKey()
	if err != nil {
		if apierrors.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Warning: %s and %s are not set, using the offline echo agent\n",
				config.EnvAPIKey, config.EnvOpenAIAPIKey)
			logging.GetLogger().Warn("no API key configured, falling back to echo agent")
			return agent.NewEchoAgent(), nil
		}
		return nil, err
	}

	ag, err := agent.NewOpenAIAgent(
		agent.WithAPIKey(key),
		agent.WithModel(getModel(cfg)),
		agent.WithBaseURL(config.ResolveBaseURL(cfg)),
		agent.WithSystemPrompt(cfg.SystemPrompt),
		agent.WithTimeout(cfg.Timeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return ag, nil
}

// modelLabel is the name shown in the header
func modelLabel(ag agent.Agent, cfg config.Config) string {
	if _, ok := ag.(*agent.EchoAgent); ok {
		return ag.Name()
	}
	return getModel(cfg)
}
