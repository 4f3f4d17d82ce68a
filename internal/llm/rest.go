package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/cv-assistant/internal/types"
)

// RESTClient calls the generateContent endpoint with a JSON body and the
// credential in the "key" query parameter.
type RESTClient struct {
	config     *Config
	httpClient *http.Client
	now        func() time.Time
}

// NewRESTClient creates a REST client. A nil httpClient uses http.DefaultClient.
func NewRESTClient(config *Config, httpClient *http.Client) *RESTClient {
	if config == nil {
		config = DefaultConfig()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTClient{
		config:     config,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// WithClock overrides the timestamp source for GeneratedAt.
func (c *RESTClient) WithClock(now func() time.Time) *RESTClient {
	c.now = now
	return c
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopK             int     `json:"topK"`
	TopP             float64 `json:"topP"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate performs exactly one POST and normalizes the outcome.
func (c *RESTClient) Generate(ctx context.Context, credential, prompt string, params GenerationParams) (*types.GeneratedText, error) {
	text, err := c.call(ctx, credential, prompt, generationConfig{
		Temperature:     params.Temperature,
		TopK:            params.TopK,
		TopP:            params.TopP,
		MaxOutputTokens: params.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	return &types.GeneratedText{Text: text, GeneratedAt: c.now()}, nil
}

// ExtractJSON requests an application/json answer and cleans it
func (c *RESTClient) ExtractJSON(ctx context.Context, credential, prompt string) (string, error) {
	params := extractionParams()
	text, err := c.call(ctx, credential, prompt, generationConfig{
		Temperature:      params.Temperature,
		TopK:             params.TopK,
		TopP:             params.TopP,
		MaxOutputTokens:  params.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Model returns the configured model name
func (c *RESTClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the HTTP client is shared.
func (c *RESTClient) Close() error {
	return nil
}

func (c *RESTClient) call(ctx context.Context, credential, prompt string, genConfig generationConfig) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: genConfig,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	endpoint := c.config.Endpoint() + "?" + url.Values{"key": {credential}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Message: "failed to create request", Cause: unwrapURLError(err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cause := unwrapURLError(err)
		return "", &TransportError{Message: cause.Error(), Cause: cause}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", parseProviderError(resp.StatusCode, respBody)
	}

	return extractText(respBody)
}

// parseProviderError reads error.message, falling back to DefaultProviderMessage.
func parseProviderError(status int, body []byte) *ProviderError {
	providerErr := &ProviderError{StatusCode: status, Message: DefaultProviderMessage}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return providerErr
	}
	if parsed.Error != nil && strings.TrimSpace(parsed.Error.Message) != "" {
		providerErr.Message = parsed.Error.Message
	}
	return providerErr
}

// extractText returns candidates[0].content.parts[0].text or ErrMalformedResponse.
func extractText(body []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ErrMalformedResponse
	}
	if len(parsed.Candidates) == 0 {
		return "", ErrMalformedResponse
	}
	candidate := parsed.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrMalformedResponse
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return "", ErrMalformedResponse
	}
	return text, nil
}

// unwrapURLError drops the *url.Error wrapper, whose message repeats the
// request URL and with it the API key.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
