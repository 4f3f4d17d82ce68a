// Package ingestion turns résumé files, job posting pages and saved form documents
// into form field values.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpaceRun = regexp.MustCompile(`[ \t]+`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes line endings and spacing while preserving line structure,
// indentation and everything inside a line other than whitespace runs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine keeps leading indentation and collapses other whitespace runs
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	indent := strings.Repeat(" ", len(line)-len(trimmed))
	return indent + innerSpaceRun.ReplaceAllString(trimmed, " ")
}
