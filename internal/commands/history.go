package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/history"
	"github.com/diogo/agentchat/internal/render"
)

var exportJSONFlag bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage conversation history",
	Long: `View and manage your local conversation history.

Conversations can be referenced by ID, by position in the list
(1 is the most recent), by @last, or by a unique part of the title.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return listConversations(store, cmd.OutOrStdout())
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		cfg, _ := config.LoadConfig()
		opts := render.OptionsFromConfig(cfg)
		if isStdoutTTY() {
			opts = opts.WithWidth(getTerminalWidth())
		}
		return showConversation(store, args[0], cmd.OutOrStdout(), &opts)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Print a conversation as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return exportConversation(store, args[0], exportJSONFlag, cmd.OutOrStdout())
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		return deleteConversation(store, args[0], cmd.OutOrStdout())
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All conversations deleted.")
		return nil
	},
}

func init() {
	historyExportCmd.Flags().BoolVar(&exportJSONFlag, "json", false, "Export as JSON instead of markdown")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// openStore opens the history store under the config directory
func openStore() (*history.Store, error) {
	configDir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, err
	}
	store, err := history.NewStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

func listConversations(store *history.Store, out io.Writer) error {
	summaries, err := store.ListSummaries()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMESSAGES\tUPDATED")
	_, _ = fmt.Fprintln(w, "-\t--\t-----\t--------\t-------")

	for i, s := range summaries {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			i+1, s.ID, truncateTitle(s.Title, 40), s.MessageCount, s.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

// showConversation prints the markdown export, rendered when opts is non-nil
func showConversation(store *history.Store, ref string, out io.Writer, opts *render.Options) error {
	id, err := store.Resolve(ref)
	if err != nil {
		return err
	}
	md, err := store.ExportMarkdown(id)
	if err != nil {
		return err
	}
	if opts != nil {
		md = render.MarkdownOrPlain(md, *opts)
	}
	_, err = fmt.Fprintln(out, md)
	return err
}

func exportConversation(store *history.Store, ref string, asJSON bool, out io.Writer) error {
	id, err := store.Resolve(ref)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := store.ExportJSON(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	md, err := store.ExportMarkdown(id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, md)
	return err
}

func deleteConversation(store *history.Store, ref string, out io.Writer) error {
	id, err := store.Resolve(ref)
	if err != nil {
		return err
	}
	if err := store.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	fmt.Fprintf(out, "Deleted conversation: %s\n", id)
	return nil
}

// truncateTitle shortens title to max runes
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max]) + "..."
}
