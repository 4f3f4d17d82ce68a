package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		wantError bool
	}{
		{
			name:     "all fields",
			document: `{"cvContent":"cv","companyName":"Acme","positionTitle":"Engineer","jobRequirements":"Go","jobDescription":"Build"}`,
		},
		{
			name:     "partial form",
			document: `{"companyName":"Acme"}`,
		},
		{
			name:      "empty object",
			document:  `{}`,
			wantError: true,
		},
		{
			name:      "unknown field",
			document:  `{"companyName":"Acme","salary":"lots"}`,
			wantError: true,
		},
		{
			name:      "wrong type",
			document:  `{"companyName":42}`,
			wantError: true,
		},
		{
			name:      "not an object",
			document:  `["cvContent"]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForm([]byte(tt.document))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError type, got %T", err)
			assert.Greater(t, len(validationErr.Errors), 0)
		})
	}
}

func TestValidateForm_MalformedJSON(t *testing.T) {
	err := ValidateForm([]byte("{ invalid json }"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON document")
}

func TestValidateJobPosting(t *testing.T) {
	valid := `{"companyName":"Acme","positionTitle":"Engineer","jobRequirements":"Go","jobDescription":"Build things"}`
	assert.NoError(t, ValidateJobPosting([]byte(valid)))

	err := ValidateJobPosting([]byte(`{"companyName":"Acme","jobDescription":""}`))
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)

	fields := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "jobDescription")
	assert.Contains(t, fields, "(root)", "missing required properties are reported at the root")
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope.schema.json", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "nope.schema.json", loadErr.Path)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}
