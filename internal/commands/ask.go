package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/agentchat/internal/agent"
	"github.com/diogo/agentchat/internal/config"
	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

var (
	rawFlag    bool
	outputFlag string
)

// Gradient colors for the spinner
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
}

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorError   = lipgloss.Color("#f7768e")
)

var (
	agentLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	agentBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// clipboardWrite is swapped out in tests
var clipboardWrite = clipboard.WriteAll

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a single prompt and print the reply",
	Long: `Send a single prompt to the agent and print the reply as rendered markdown.
The prompt is read from the argument or, when omitted, from stdin.
Output is plain text when stdout is not a terminal or --raw is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := readPrompt(args, cmd.InOrStdin(), stdinHasData())
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Using default configuration"))
		}

		ag, err := newAgent(cfg)
		if err != nil {
			return err
		}

		raw := rawFlag || !isStdoutTTY()
		return runAsk(cmd.Context(), ag, prompt, cfg, cmd.OutOrStdout(), raw)
	},
}

func init() {
	askCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the reply without formatting")
	askCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the reply to a file")
}

// readPrompt returns the prompt from args, or from stdin when it is piped
func readPrompt(args []string, stdin io.Reader, hasStdin bool) (string, error) {
	var prompt string
	switch {
	case len(args) > 0:
		prompt = args[0]
	case hasStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		prompt = string(data)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	return prompt, nil
}

// runAsk sends one prompt and writes the reply to out
func runAsk(ctx context.Context, ag agent.Agent, prompt string, cfg config.Config, out io.Writer, raw bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.WithFields("agent", ag.Name())

	var spin *spinner
	if !raw {
		spin = newSpinner(os.Stderr, "Waiting for "+ag.Name())
		spin.start()
	}

	start := time.Now()
	reply, err := ag.Reply(ctx, []models.ChatMessage{models.UserMessage(prompt)})
	logging.LogDuration(log, "ask", start)
	if err != nil {
		if !raw {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Request failed"))
		}
		return fmt.Errorf("request failed: %w", err)
	}
	if !raw {
		spin.stopWithSuccess("Done")
	}

	text := reply.Content

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !raw {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Reply saved to "+outputFlag))
		}
		return nil
	}

	if raw {
		_, err := fmt.Fprint(out, text)
		return err
	}

	if cfg.CopyToClipboard {
		if err := clipboardWrite(text); err != nil {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(os.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	rendered := render.MarkdownOrPlain(text, render.OptionsFromConfig(cfg).WithWidth(bubbleWidth-4))
	fmt.Fprintln(out, agentLabelStyle.Render("✦ "+ag.Name()))
	fmt.Fprintln(out, agentBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}

// spinner is the animated indicator shown on stderr while waiting
type spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(s.w, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	color := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(color).Bold(true).Render(chars[s.frame%len(chars)])
	dots := strings.Repeat(".", (s.frame/4)%4)
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message + dots)

	fmt.Fprintf(s.w, "\r\033[K%s %s", spinnerChar, msg)
}

// stopOnce closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	fmt.Fprintf(s.w, "%s %s\n", checkmark, lipgloss.NewStyle().Foreground(colorSuccess).Render(message))
}

func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// stdinHasData reports whether stdin is piped rather than a terminal
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Hint: Set %s or %s, or add it to a .env file", config.EnvAPIKey, config.EnvOpenAIAPIKey)))
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: You've hit the rate limit. Try again later or use a different model"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise request_timeout in the config or try again"))
	case apierrors.IsConfigError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'agentchat config path' to locate the config file"))
	}

	return sb.String()
}
