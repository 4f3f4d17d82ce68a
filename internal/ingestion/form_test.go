package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-assistant/internal/schemas"
	"github.com/jonathan/cv-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm_MergesOverCurrent(t *testing.T) {
	current := types.FormFields{CVContent: "my cv", CompanyName: "Old"}

	merged, err := ParseForm([]byte(`{"companyName":"Acme","positionTitle":"Engineer"}`), current)
	require.NoError(t, err)
	assert.Equal(t, "my cv", merged.CVContent)
	assert.Equal(t, "Acme", merged.CompanyName)
	assert.Equal(t, "Engineer", merged.PositionTitle)
}

func TestParseForm_RejectsInvalidDocument(t *testing.T) {
	current := types.FormFields{CompanyName: "Old"}

	merged, err := ParseForm([]byte(`{"companyName":"Acme","salary":"lots"}`), current)
	require.Error(t, err)
	var validationErr *schemas.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, current, merged)
}

func TestWriteForm_ReadForm_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	fields := types.FormFields{
		CVContent:       "Jane Doe\nhttps://jane.dev",
		CompanyName:     "Acme",
		PositionTitle:   "Engineer",
		JobRequirements: "Go",
		JobDescription:  "Build",
	}

	require.NoError(t, WriteForm(path, fields))
	got, err := ReadForm(path, types.FormFields{})
	require.NoError(t, err)
	assert.Equal(t, fields, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReadForm_Missing(t *testing.T) {
	_, err := ReadForm("/nonexistent/form.json", types.FormFields{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read form file")
}
