package schemas

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles, err := fs.Glob(FS, "*.schema.json")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{Form, JobPosting}, schemaFiles)

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := FS.ReadFile(schemaFile)
			require.NoError(t, err)

			var schema map[string]any
			require.NoError(t, json.Unmarshal(data, &schema), "schema should be valid JSON")
			assert.Equal(t, "object", schema["type"])
			assert.NotEmpty(t, schema["title"])
		})
	}
}
