package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object an extraction call must return.
type ExtractionSchema struct {
	Task   string
	Fields []SchemaField
}

// SchemaField is one string property of the extraction output.
type SchemaField struct {
	Name        string
	Description string
}

// JobPostingSchema splits a raw job posting into the four job fields of the form.
func JobPostingSchema() ExtractionSchema {
	return ExtractionSchema{
		Task: `You split a raw job posting into the fields of a job application form.
Copy text verbatim: do not paraphrase, summarize or reword.
Leave out application questions, EEO statements, legal disclaimers, cookie notices and navigation text.`,
		Fields: []SchemaField{
			{Name: "companyName", Description: "name of the hiring company"},
			{Name: "positionTitle", Description: "title of the advertised position"},
			{Name: "jobRequirements", Description: "qualifications, skills and nice-to-haves, one per line"},
			{Name: "jobDescription", Description: "role summary, team context and responsibilities"},
		},
	}
}

// BuildExtractionPrompt renders schema as instructions followed by the quoted input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Task)
	sb.WriteString("\n\nRespond with one JSON object and nothing else. Every property is a required string:\n{\n")
	for i, field := range schema.Fields {
		fmt.Fprintf(&sb, "  %q: string // %s", field.Name, field.Description)
		if i < len(schema.Fields)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("}\nUse an empty string when the posting does not say.\n\n")

	sb.WriteString("Job posting:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")
	return sb.String()
}
