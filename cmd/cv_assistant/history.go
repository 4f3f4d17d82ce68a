package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/cv-assistant/internal/observability"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past successful generations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the text of one generation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyLimit int

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to list")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.svc.History().ListGenerations(ctx, historyLimit)
	if err != nil {
		return err
	}
	observability.NewPrinter(out(cmd)).PrintHistory(records)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid generation ID format: %w", err)
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.svc.History().GetGeneration(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("generation %s not found", id)
	}

	if a.cfg.Verbose {
		_, _ = fmt.Fprintf(out(cmd), "%s for %s: %s (%s, ~%d prompt tokens, %s)\n\n",
			rec.Mode.Label(), rec.CompanyName, rec.PositionTitle, rec.Model, rec.PromptTokens,
			rec.GeneratedAt.Local().Format("2006-01-02 15:04"))
	}
	_, _ = fmt.Fprintln(out(cmd), rec.Text)
	return nil
}
