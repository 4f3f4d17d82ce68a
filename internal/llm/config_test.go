package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, BackendREST, config.Backend)
	assert.Equal(t, "gemini-2.0-flash", config.Model)
	assert.Equal(t, time.Duration(0), config.Timeout)
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
		config.Endpoint())
}

func TestEndpoint_TrimsSlashAndFillsDefaults(t *testing.T) {
	config := &Config{BaseURL: "http://localhost:9999/v1beta/"}
	assert.Equal(t, "http://localhost:9999/v1beta/models/gemini-2.0-flash:generateContent", config.Endpoint())

	config = &Config{Model: "gemini-2.5-pro"}
	assert.Equal(t, DefaultBaseURL+"/models/gemini-2.5-pro:generateContent", config.Endpoint())
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel("custom-model")

	// Original should be unchanged
	assert.Equal(t, DefaultModel, config.Model)

	// New config should have custom model
	assert.Equal(t, "custom-model", newConfig.Model)
	assert.Equal(t, config.BaseURL, newConfig.BaseURL)
}

func TestDefaultGenerationParams(t *testing.T) {
	p := DefaultGenerationParams()
	assert.Equal(t, 0.7, p.Temperature)
	assert.Equal(t, 40, p.TopK)
	assert.Equal(t, 0.95, p.TopP)
	assert.Equal(t, 8192, p.MaxOutputTokens)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendREST, b)

	b, err = ParseBackend(" SDK ")
	require.NoError(t, err)
	assert.Equal(t, BackendSDK, b)

	_, err = ParseBackend("grpc")
	assert.Error(t, err)
}
