package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"mp4-splitter/domain/history"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent export runs",
	Long: `List export runs recorded in the history database, newest first.

Example:
  mp4-splitter history
  mp4-splitter history --limit 5`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	db, err := openHistory(c, GetLogger())
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("export history is disabled; set history.enabled to true")
	}
	defer db.Close()

	return RunHistoryWithDependencies(cmd.Context(), db, historyLimit, os.Stdout)
}

// RunHistoryWithDependencies runs the history command with injected dependencies (for testing)
func RunHistoryWithDependencies(ctx context.Context, store history.Store, limit int, output OutputWriter) error {
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list export runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No export runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tSEGMENTS\tDURATION\tSOURCE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			len(run.Segments),
			run.Duration().Round(100*time.Millisecond),
			run.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, run := range runs {
		if run.Status == history.StatusFailed && run.Error != "" {
			fmt.Fprintf(output, "\n%s failed: %s\n", shortID(run.ID), run.Error)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
