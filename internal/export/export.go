// Package export names and writes generated text as plain-text files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/cv-assistant/internal/types"
)

// DateLayout is the date part of an export filename
const DateLayout = "2006-01-02"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// path separators and characters most filesystems reject
	unsafeChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]`)
)

// Slug lower-cases s and replaces each whitespace run with a single underscore.
// Characters that cannot appear in a file name also become underscores.
func Slug(s string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(s), "_")
	return unsafeChars.ReplaceAllString(slug, "_")
}

// FileName returns <kind>_<slug>_<YYYY-MM-DD>.txt, where kind and the slug
// source depend on mode and the date is at's calendar date in its own location.
// Callers pass time.Now() so the date is the user's local day.
func FileName(mode types.Mode, fields types.FormFields, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.txt", mode.FileKind(), Slug(mode.SlugSource(fields)), at.Format(DateLayout))
}

// Save writes out.Text unchanged to dir/FileName(mode, fields, at) and returns the path.
func Save(dir string, mode types.Mode, fields types.FormFields, out *types.GeneratedText, at time.Time) (string, error) {
	if out == nil {
		return "", fmt.Errorf("no %s output to save", mode.Label())
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(mode, fields, at))
	if err := os.WriteFile(path, []byte(out.Text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
