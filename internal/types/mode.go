//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Mode selects which generation task is performed.
type Mode string

const (
	// ModeCoverLetter generates a cover letter for the target job
	ModeCoverLetter Mode = "cover_letter"
	// ModeResumeUpdate rewrites the résumé toward the target job
	ModeResumeUpdate Mode = "resume"
)

// Modes returns every supported mode.
func Modes() []Mode {
	return []Mode{ModeCoverLetter, ModeResumeUpdate}
}

// ParseMode converts a user-supplied string into a Mode.
// Accepts the canonical names plus the short aliases used on the CLI.
func ParseMode(s string) (Mode, error) {
	switch s {
	case string(ModeCoverLetter), "cover-letter", "coverLetter", "letter":
		return ModeCoverLetter, nil
	case string(ModeResumeUpdate), "cv", "update-cv", "resume-update":
		return ModeResumeUpdate, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected %q or %q)", s, ModeCoverLetter, ModeResumeUpdate)
	}
}

// Label is the heading shown above the generated output.
func (m Mode) Label() string {
	if m == ModeResumeUpdate {
		return "Updated CV"
	}
	return "Cover Letter"
}

// FileKind is the filename prefix used when saving the output.
func (m Mode) FileKind() string {
	if m == ModeResumeUpdate {
		return "updated_cv"
	}
	return "cover_letter"
}

// SlugSource returns the field value the export filename is derived from:
// the company for cover letters, the position for résumés.
func (m Mode) SlugSource(f FormFields) string {
	if m == ModeResumeUpdate {
		return f.PositionTitle
	}
	return f.CompanyName
}
