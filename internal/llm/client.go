package llm

import (
	"context"

	"github.com/jonathan/cv-assistant/internal/types"
)

// Client is one generation call against the configured provider backend.
// Implementations are stateless per call: no retry, no caching.
type Client interface {
	// Generate sends prompt once and returns the generated text or one of
	// ErrMissingCredential, ErrMalformedResponse, *ProviderError, *TransportError.
	Generate(ctx context.Context, credential, prompt string, params GenerationParams) (*types.GeneratedText, error)
	// ExtractJSON asks for a JSON answer and strips any markdown wrapper from it
	ExtractJSON(ctx context.Context, credential, prompt string) (string, error)
	// Model returns the configured model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for the configured backend
func NewClient(config *Config) Client {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Backend {
	case BackendSDK:
		return NewSDKClient(config)
	default:
		return NewRESTClient(config, nil)
	}
}
