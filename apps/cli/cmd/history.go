package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previously executed reports",
	Long: `Inspect reports recorded when history.path is configured.

Examples:
  reqline history list --limit 10
  reqline history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded executions, newest first",
	Args:  cobra.NoArgs,
	RunE:  historyListCommand,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the full report of one execution",
	Args:  cobra.ExactArgs(1),
	RunE:  historyShowCommand,
}

var (
	historyLimitFlag int
	historyJSONFlag  bool
)

func init() {
	historyListCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Maximum number of entries")
	historyListCmd.Flags().BoolVar(&historyJSONFlag, "json", false, "Output as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return configError(fmt.Errorf("history is disabled (set history.path or REQLINE_HISTORY_PATH)"))
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}

	if historyJSONFlag {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tMETHOD\tSTATUS\tDURATION\tURL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dms\t%s\n",
			e.ID, e.StartedAt.Format("2006-01-02 15:04:05"), e.Method, e.HTTPStatus, e.DurationMs, e.FullURL)
	}
	return w.Flush()
}

func historyShowCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return configError(fmt.Errorf("history is disabled (set history.path or REQLINE_HISTORY_PATH)"))
	}
	defer store.Close()

	entry, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(entry.Report)
}
