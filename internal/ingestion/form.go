package ingestion

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/cv-assistant/internal/schemas"
	"github.com/jonathan/cv-assistant/internal/types"
)

// ParseForm validates a saved form document and merges it over current.
// Fields absent from the document keep their current values.
func ParseForm(data []byte, current types.FormFields) (types.FormFields, error) {
	if err := schemas.ValidateForm(data); err != nil {
		return current, err
	}

	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return current, fmt.Errorf("failed to parse form JSON: %w", err)
	}

	merged := current
	for name, value := range doc {
		if err := merged.Set(name, value); err != nil {
			return current, err
		}
	}
	return merged, nil
}

// ReadForm reads and parses a saved form document from path.
func ReadForm(path string, current types.FormFields) (types.FormFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return current, fmt.Errorf("failed to read form file %s: %w", path, err)
	}
	return ParseForm(data, current)
}

// WriteForm writes fields as an indented JSON document that ReadForm accepts.
func WriteForm(path string, fields types.FormFields) error {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal form: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write form file %s: %w", path, err)
	}
	return nil
}
