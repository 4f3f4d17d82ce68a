// Package schemas holds the JSON Schema documents for the data the assistant imports.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	Form       = "form.schema.json"
	JobPosting = "job_posting.schema.json"
)
