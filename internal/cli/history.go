package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/factlens/internal/history"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear recent analyses",
	Long: `History keeps the most recent analyses, newest first. Older entries
are evicted once the configured capacity is reached.`,
	RunE: runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.Clear(context.Background()); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("✓ History cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	printHistory(os.Stdout, entries)
	return nil
}

func openHistory() (history.Store, error) {
	cfg, err := commandConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func printHistory(w io.Writer, entries []model.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No analyses yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-15s %3.0f%%  %s\n",
			e.Date.Local().Format("2006-01-02 15:04"), e.Verdict.Label(), e.Confidence*100, e.Query)
	}
}
