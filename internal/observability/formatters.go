// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxPreviewLines is how many lines of long text are shown
	maxPreviewLines = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the box's inner width, counting runes
func pad(line string) string {
	width := boxWidth - 4
	line = strings.ReplaceAll(line, "\t", "  ")
	if n := utf8.RuneCountInString(line); n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	} else if n < width {
		return line + strings.Repeat(" ", width-n)
	}
	return line
}

// preview returns the first maxPreviewLines lines of text and a note about the rest
func preview(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) <= maxPreviewLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:maxPreviewLines], "\n") +
		fmt.Sprintf("\n... and %d more lines", len(lines)-maxPreviewLines)
}

// PrintForm outputs a summary of the stored form fields.
func (p *Printer) PrintForm(fields types.FormFields) {
	var sb strings.Builder
	values := fields.Map()
	for _, name := range types.FieldNames() {
		value := values[name]
		summary := "(empty)"
		if strings.TrimSpace(value) != "" {
			firstLine := strings.SplitN(strings.TrimSpace(value), "\n", 2)[0]
			summary = fmt.Sprintf("%s [%d chars]", firstLine, utf8.RuneCountInString(value))
		}
		sb.WriteString(fmt.Sprintf("%-16s %s\n", name+":", summary))
	}
	p.printBox("FORM", sb.String())
}

// PrintPrompt outputs the size of a built prompt and its opening lines.
func (p *Printer) PrintPrompt(mode types.Mode, model string, prompt string, tokens int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mode:    %s\n", mode.Label()))
	sb.WriteString(fmt.Sprintf("Model:   %s\n", model))
	sb.WriteString(fmt.Sprintf("Size:    %d chars, ~%d tokens\n", utf8.RuneCountInString(prompt), tokens))
	sb.WriteString("\n")
	sb.WriteString(preview(prompt))
	p.printBox("PROMPT", sb.String())
}

// PrintResult outputs a settled result slot.
func (p *Printer) PrintResult(result types.GenerationResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:   %s\n", result.State))
	switch {
	case result.Err != "":
		sb.WriteString(fmt.Sprintf("Error:   %s\n", result.Err))
		sb.WriteString(fmt.Sprintf("Reason:  %s\n", result.Reason))
	case result.Output != nil:
		sb.WriteString(fmt.Sprintf("At:      %s\n", result.Output.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
		sb.WriteString(fmt.Sprintf("Length:  %d chars\n", utf8.RuneCountInString(result.Output.Text)))
		sb.WriteString("\n")
		sb.WriteString(preview(result.Output.Text))
	}
	p.printBox(strings.ToUpper(result.Mode.Label()), sb.String())
}

// PrintHistory outputs a table of past generations.
func (p *Printer) PrintHistory(records []types.GenerationRecord) {
	if len(records) == 0 {
		p.printBox("HISTORY", "No generations yet")
		return
	}
	var sb strings.Builder
	for _, rec := range records {
		target := rec.CompanyName
		if rec.Mode == types.ModeResumeUpdate {
			target = rec.PositionTitle
		}
		sb.WriteString(fmt.Sprintf("%s  %-12s %s\n", rec.ID.String()[:8], rec.Mode.FileKind(), target))
		sb.WriteString(fmt.Sprintf("          %s\n", rec.GeneratedAt.Local().Format("2006-01-02 15:04")))
	}
	p.printBox("HISTORY", sb.String())
}
