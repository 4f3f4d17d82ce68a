package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/cv-assistant/internal/types"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKClient implements Client on top of the google/generative-ai-go library.
// A library client is created per call because the credential is per call.
type SDKClient struct {
	config *Config
	now    func() time.Time
}

// NewSDKClient creates a new SDK-backed client
func NewSDKClient(config *Config) *SDKClient {
	if config == nil {
		config = DefaultConfig()
	}
	return &SDKClient{config: config, now: time.Now}
}

// Generate generates text content through the SDK
func (c *SDKClient) Generate(ctx context.Context, credential, prompt string, params GenerationParams) (*types.GeneratedText, error) {
	text, err := c.call(ctx, credential, prompt, params, "")
	if err != nil {
		return nil, err
	}
	return &types.GeneratedText{Text: text, GeneratedAt: c.now()}, nil
}

// ExtractJSON generates JSON content through the SDK
func (c *SDKClient) ExtractJSON(ctx context.Context, credential, prompt string) (string, error) {
	text, err := c.call(ctx, credential, prompt, extractionParams(), "application/json")
	if err != nil {
		return "", err
	}
	// Clean any markdown code block wrappers
	return CleanJSONBlock(text), nil
}

// Model returns the configured model name
func (c *SDKClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *SDKClient) Close() error {
	return nil
}

func (c *SDKClient) call(ctx context.Context, credential, prompt string, params GenerationParams, mimeType string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, c.clientOptions(credential)...)
	if err != nil {
		return "", &TransportError{Message: "failed to create Gemini client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	model := client.GenerativeModel(c.config.Model)
	model.SetTemperature(float32(params.Temperature))
	model.SetTopK(int32(params.TopK))
	model.SetTopP(float32(params.TopP))
	model.SetMaxOutputTokens(int32(params.MaxOutputTokens))
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapSDKError(err)
	}

	return extractTextFromResponse(resp)
}

// clientOptions points the library at BaseURL when it is not the public API.
// The library adds the API version to every path itself.
func (c *SDKClient) clientOptions(credential string) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(credential)}
	base := strings.TrimRight(c.config.BaseURL, "/")
	if base != "" && base != DefaultBaseURL {
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(base, "/"+apiVersion)))
	}
	return opts
}

// mapSDKError sorts library errors into the shared taxonomy.
func mapSDKError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = DefaultProviderMessage
		}
		return &ProviderError{StatusCode: apiErr.Code, Message: message}
	}
	return &TransportError{Message: fmt.Sprintf("failed to generate content: %v", err), Cause: err}
}

// extractTextFromResponse returns the first part of the first candidate as text
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrMalformedResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrMalformedResponse
	}

	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok || text == "" {
		return "", ErrMalformedResponse
	}

	return string(text), nil
}
