package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/cv-assistant/internal/assistant"
	"github.com/jonathan/cv-assistant/internal/export"
	"github.com/jonathan/cv-assistant/internal/observability"
	"github.com/jonathan/cv-assistant/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <cover_letter|resume|both>",
	Short: "Generate a cover letter, an updated CV, or both",
	Long: `Send the stored form to Gemini and print the generated text.

Every field must be filled and an API key configured first. With --save the
output is also written as <kind>_<slug>_<YYYY-MM-DD>.txt to --out (default: the
output_dir setting, or the current directory).`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateSave   bool
	generateOutDir string
)

func init() {
	generateCmd.Flags().BoolVarP(&generateSave, "save", "s", false, "Save each output to a text file")
	generateCmd.Flags().StringVarP(&generateOutDir, "out", "o", "", "Directory for saved files")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var modes []types.Mode
	if args[0] == "both" || args[0] == "all" {
		modes = types.Modes()
	} else {
		mode, err := types.ParseMode(args[0])
		if err != nil {
			return err
		}
		modes = []types.Mode{mode}
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	outDir := a.cfg.OutputDir
	if cmd.Flags().Changed("out") {
		outDir = generateOutDir
	}
	printer := observability.NewPrinter(out(cmd))

	if a.cfg.Verbose {
		fields, err := a.svc.Form().Fields(ctx)
		if err != nil {
			return err
		}
		printer.PrintForm(fields)
		for _, mode := range modes {
			prompt, tokens, err := a.svc.Prompt(ctx, mode)
			if err != nil {
				return err
			}
			printer.PrintPrompt(mode, a.svc.Model(), prompt, tokens)
		}
	}

	var results []types.GenerationResult
	var genErr error
	if len(modes) == 1 {
		var result types.GenerationResult
		result, genErr = a.svc.Generate(ctx, modes[0])
		results = []types.GenerationResult{result}
	} else {
		results, genErr = a.svc.GenerateAll(ctx)
	}

	fields, err := a.svc.Form().Fields(ctx)
	if err != nil {
		return err
	}

	var saveErrs []error
	for _, result := range results {
		if result.Output == nil {
			continue
		}
		if a.cfg.Verbose {
			printer.PrintResult(result)
		} else {
			if len(results) > 1 {
				_, _ = fmt.Fprintf(out(cmd), "=== %s ===\n", result.Mode.Label())
			}
			_, _ = fmt.Fprintln(out(cmd), result.Output.Text)
		}

		if generateSave {
			path, err := export.Save(outDir, result.Mode, fields, result.Output, time.Now())
			if err != nil {
				saveErrs = append(saveErrs, err)
				continue
			}
			a.svc.Notifier().Notify(assistant.Notification{Kind: assistant.KindSuccess, Message: assistant.MsgFileDownloaded, Mode: result.Mode})
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s to %s\n", result.Mode.Label(), path)
		}
	}

	return errors.Join(append([]error{genErr}, saveErrs...)...)
}
