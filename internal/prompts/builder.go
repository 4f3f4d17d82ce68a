package prompts

import "github.com/jonathan/cv-assistant/internal/types"

// GenerationFile holds the cover letter and résumé templates.
const GenerationFile = "generation.json"

// TemplateKey returns the key of the template used for mode.
func TemplateKey(mode types.Mode) string {
	if mode == types.ModeResumeUpdate {
		return "resume-update"
	}
	return "cover-letter"
}

// BuildPrompt renders the instruction text for mode with every field value
// embedded verbatim. Callers validate the fields first; BuildPrompt itself
// never fails and has no side effects beyond the template cache.
func BuildPrompt(mode types.Mode, fields types.FormFields) string {
	template := MustGet(GenerationFile, TemplateKey(mode))
	return Format(template, map[string]string{
		"CVContent":       fields.CVContent,
		"CompanyName":     fields.CompanyName,
		"PositionTitle":   fields.PositionTitle,
		"JobRequirements": fields.JobRequirements,
		"JobDescription":  fields.JobDescription,
	})
}
