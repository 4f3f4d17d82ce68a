// Package llm provides the Gemini generation client, its configuration and the
// error taxonomy shared by every caller that talks to the generation service.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// Backend selects how requests reach the generation service.
type Backend string

// Backend constants define supported transports for the same provider
const (
	// BackendREST posts JSON directly to the generateContent endpoint
	BackendREST Backend = "rest"
	// BackendSDK goes through the google/generative-ai-go client library
	BackendSDK Backend = "sdk"
)

const (
	// DefaultModel is the model version placed in the endpoint path
	DefaultModel = "gemini-2.0-flash"
	// DefaultBaseURL is the generative language API root
	DefaultBaseURL = "https://generativelanguage.googleapis.com/" + apiVersion
)

const apiVersion = "v1beta"

// GenerationParams is the sampling configuration sent with every request.
type GenerationParams struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationParams returns the fixed parameters used for generation.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	}
}

// extractionParams are used for structured extraction calls, where low
// temperature keeps the output consistent.
func extractionParams() GenerationParams {
	p := DefaultGenerationParams()
	p.Temperature = 0.1
	return p
}

// Config holds the client configuration for the application
type Config struct {
	Backend Backend
	Model   string
	BaseURL string
	// Timeout bounds a single call. Zero leaves the call bounded only by the
	// transport defaults.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (REST backend, no timeout)
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendREST,
		Model:   DefaultModel,
		BaseURL: DefaultBaseURL,
	}
}

// Endpoint returns the generateContent URL for the configured model, without credentials.
func (c *Config) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	return fmt.Sprintf("%s/models/%s:generateContent", base, model)
}

// WithModel returns a new Config with a different model
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	newConfig.Model = model
	return &newConfig
}

// ParseBackend converts a configuration string into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendREST:
		return BackendREST, nil
	case BackendSDK:
		return BackendSDK, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected %q or %q)", s, BackendREST, BackendSDK)
	}
}
