package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/cv-assistant/internal/fetch"
	"github.com/jonathan/cv-assistant/internal/ingestion"
	"github.com/jonathan/cv-assistant/internal/observability"
	"github.com/jonathan/cv-assistant/internal/types"
	"github.com/spf13/cobra"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Show and edit the stored form",
	Long: `The form holds five fields: ` + strings.Join(types.FieldNames(), ", ") + `.
All five must be non-empty before anything can be generated.`,
}

var formShowCmd = &cobra.Command{
	Use:   "show [field]",
	Short: "Print the stored form, or one field's full value",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFormShow,
}

var formSetCmd = &cobra.Command{
	Use:   "set <field> [value]",
	Short: "Set one field; the value is read from --file or stdin when omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFormSet,
}

var formImportResumeCmd = &cobra.Command{
	Use:   "import-resume <file>",
	Short: "Fill cvContent from a .txt, .md, .pdf or .docx file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormImportResume,
}

var formImportJobCmd = &cobra.Command{
	Use:   "import-job <url>",
	Short: "Fill the job fields from a posting URL",
	Long: `Fetch a job posting and fill the job fields from it.

Without --extract the page text becomes the job description. With --extract the
text is split into company, position, requirements and description by one
Gemini call; if that call fails the page text is kept as the description.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormImportJob,
}

var formImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Merge a saved form JSON document into the stored form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormImport,
}

var formExportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Write the stored form to a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormExport,
}

var formClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every field",
	Args:  cobra.NoArgs,
	RunE:  runFormClear,
}

var (
	formSetFile      string
	importJobExtract bool
	importJobBrowser bool
)

func init() {
	formSetCmd.Flags().StringVarP(&formSetFile, "file", "f", "", "Read the value from a file")
	formImportJobCmd.Flags().BoolVar(&importJobExtract, "extract", false, "Split the posting into fields with one Gemini call")
	formImportJobCmd.Flags().BoolVar(&importJobBrowser, "use-browser", false, "Render with headless Chrome when the page has too little text (requires Chrome)")

	formCmd.AddCommand(formShowCmd, formSetCmd, formImportResumeCmd, formImportJobCmd, formImportCmd, formExportCmd, formClearCmd)
	rootCmd.AddCommand(formCmd)
}

func runFormShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		value, err := a.svc.Form().Field(ctx, args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out(cmd), value)
		return nil
	}

	fields, err := a.svc.Form().Fields(ctx)
	if err != nil {
		return err
	}
	observability.NewPrinter(out(cmd)).PrintForm(fields)
	return nil
}

func runFormSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case formSetFile != "":
		data, err := os.ReadFile(formSetFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", formSetFile, err)
		}
		value = string(data)
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		value = string(data)
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Form().SetField(ctx, args[0], value); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(cmd), "Saved %s (%d chars)\n", args[0], len([]rune(value)))
	return nil
}

func runFormImportResume(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	text, err := ingestion.ReadResume(args[0])
	if err != nil {
		return fmt.Errorf("failed to import resume: %w", err)
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Form().SetField(ctx, types.FieldCVContent, text); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(cmd), "Imported CV from %s (%d chars)\n", args[0], len([]rune(text)))
	return nil
}

func runFormImportJob(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := fetch.ValidateURL(args[0]); err != nil {
		return err
	}

	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	useBrowser := a.cfg.UseBrowser
	if cmd.Flags().Changed("use-browser") {
		useBrowser = importJobBrowser
	}
	var renderer fetch.Renderer
	if useBrowser {
		renderer = fetch.NewChromeRenderer(a.cfg.Verbose)
	}

	importer := &ingestion.JobImporter{
		Fetcher: fetch.NewFetcher(renderer, a.cfg.Verbose),
		Client:  a.client,
		Verbose: a.cfg.Verbose,
	}

	credential := ""
	if importJobExtract {
		if credential, err = a.svc.Credential(ctx); err != nil {
			return err
		}
	}

	posting, err := importer.Import(ctx, args[0], credential, importJobExtract)
	if err != nil {
		return err
	}

	fields, err := a.svc.Form().Update(ctx, func(current *types.FormFields) error {
		posting.Apply(current)
		return nil
	})
	if err != nil {
		return err
	}

	if posting.Extracted {
		_, _ = fmt.Fprintf(out(cmd), "Imported job details from %s (%s)\n", args[0], posting.Platform)
	} else {
		_, _ = fmt.Fprintf(out(cmd), "Imported job description from %s (%s)\n", args[0], posting.Platform)
	}
	observability.NewPrinter(out(cmd)).PrintForm(fields)
	return nil
}

func runFormImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.svc.Form().Update(ctx, func(current *types.FormFields) error {
		fields, err := ingestion.ReadForm(args[0], *current)
		if err != nil {
			return err
		}
		*current = fields
		return nil
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(cmd), "Imported form from %s\n", args[0])
	return nil
}

func runFormExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	fields, err := a.svc.Form().Fields(ctx)
	if err != nil {
		return err
	}
	if err := ingestion.WriteForm(args[0], fields); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(cmd), "Exported form to %s\n", args[0])
	return nil
}

func runFormClear(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Form().ClearFields(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out(cmd), "Form cleared")
	return nil
}
