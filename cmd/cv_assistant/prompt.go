package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-assistant/internal/observability"
	"github.com/jonathan/cv-assistant/internal/types"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <mode>",
	Short: "Print the prompt that generate would send",
	Long: `Print the prompt built from the stored form for a mode (cover_letter or resume).
No request is made. With --verbose a size summary is printed instead of the full prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	mode, err := types.ParseMode(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	prompt, tokens, err := a.svc.Prompt(ctx, mode)
	if err != nil {
		return err
	}

	if a.cfg.Verbose {
		observability.NewPrinter(out(cmd)).PrintPrompt(mode, a.svc.Model(), prompt, tokens)
		return nil
	}
	_, _ = fmt.Fprint(out(cmd), prompt)
	return nil
}
